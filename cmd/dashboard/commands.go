package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/dashboard"
	"healthcare-dashboard/internal/domain"
)

type app struct {
	d      *dashboard.Dashboard
	out    io.Writer
	errOut io.Writer
}

type command struct {
	summary string
	// page must be in the signed-in menu; "" needs no page.
	page string
	// public commands run without a session.
	public bool

	run func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"register":       {summary: "create an account", public: true, run: cmdRegister},
		"login":          {summary: "log in and remember the session", public: true, run: cmdLogin},
		"logout":         {summary: "forget the session", public: true, run: cmdLogout},
		"whoami":         {summary: "show the signed-in user and menu", run: cmdWhoami},
		"profile":        {summary: "show your profile", page: domain.PageProfile, run: cmdProfile},
		"update-profile": {summary: "change name, email, contact number or address", page: domain.PageProfile, run: cmdUpdateProfile},
		"upload-image":   {summary: "upload a profile image file", page: domain.PageProfile, run: cmdUploadImage},
		"update-doctor":  {summary: "change your specialization or fee (doctors)", page: domain.PageProfile, run: cmdUpdateDoctor},
		"doctors":        {summary: "list doctors with search, filter and sort", run: cmdDoctors},
		"bookable":       {summary: "list doctors you can book", page: domain.PageCreateAppointment, run: cmdBookable},
		"apply":          {summary: "apply to become a doctor", page: domain.PageApplyDoctor, run: cmdApply},
		"application":    {summary: "show your doctor application", run: cmdApplication},
		"review":         {summary: "accept or reject a doctor application (admin)", page: domain.PageDoctors, run: cmdReview},
		"remove-doctor":  {summary: "delete a reviewed doctor profile (admin)", page: domain.PageDoctors, run: cmdRemoveDoctor},
		"appointments":   {summary: "list your appointments", page: domain.PageAppointments, run: cmdAppointments},
		"book":           {summary: "book an appointment", page: domain.PageCreateAppointment, run: cmdBook},
		"reschedule":     {summary: "move a pending appointment", page: domain.PageAppointments, run: cmdReschedule},
		"set-status":     {summary: "accept, reject or complete an appointment (doctors)", page: domain.PageAppointments, run: cmdSetStatus},
		"cancel":         {summary: "delete a pending appointment", page: domain.PageAppointments, run: cmdCancel},
		"users":          {summary: "list every account (admin)", page: domain.PageUsers, run: cmdUsers},
	}
}

func dispatch(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(a.out)
		return nil
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		usage(a.errOut)
		return apperrors.Validation("unknown command %q", name)
	}

	if !cmd.public {
		if !a.d.Session.IsAuthenticated() {
			return apperrors.Auth("not logged in; run \"dashboard login\" first")
		}
		if err := a.d.Restore(ctx); err != nil {
			return err
		}
		if cmd.page != "" {
			if err := a.d.Navigate(cmd.page); err != nil {
				return err
			}
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return cmd.run(ctx, a, fs, args[1:])
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: dashboard <command> [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, commands[name].summary)
	}
	tw.Flush()
}

// parse parses args and rejects stray positional arguments beyond want.
func parse(fs *flag.FlagSet, args []string, want int) error {
	if err := fs.Parse(args); err != nil {
		return apperrors.Validation("%v", err)
	}
	if fs.NArg() != want {
		return apperrors.Validation("%s: expected %d argument(s), got %d", fs.Name(), want, fs.NArg())
	}
	return nil
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func parseFee(s string) (float64, error) {
	fee, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperrors.Validation("fees must be a number")
	}
	return fee, nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func cmdRegister(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var req client.Registration
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password (min 6 characters)")
	fs.StringVar(&req.ContactNumber, "contact", "", "contact number")
	fs.StringVar(&req.Address, "address", "", "postal address")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	return a.d.Register(ctx, req)
}

func cmdLogin(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var creds client.Credentials
	fs.StringVar(&creds.Email, "email", "", "email address")
	fs.StringVar(&creds.Password, "password", "", "password")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Login(ctx, creds); err != nil {
		return err
	}
	return printWhoami(a)
}

func cmdLogout(_ context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	a.d.Logout()
	return nil
}

func cmdWhoami(_ context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	return printWhoami(a)
}

func printWhoami(a *app) error {
	user := a.d.Session.CurrentUser()
	if user == nil {
		return apperrors.Auth("not logged in")
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	labels := make([]string, 0)
	for _, item := range a.d.Menu() {
		labels = append(labels, item.Label)
	}
	fmt.Fprintf(a.out, "Menu: %s\n", strings.Join(labels, " | "))
	return nil
}

func cmdProfile(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Profile.Load(ctx); err != nil {
		return err
	}
	user := a.d.Profile.User()
	table(a.out, "FIELD\tVALUE", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Name\t%s\n", user.Name)
		fmt.Fprintf(tw, "Email\t%s\n", user.Email)
		fmt.Fprintf(tw, "Role\t%s\n", user.Role)
		fmt.Fprintf(tw, "Contact\t%s\n", user.ContactNumber)
		fmt.Fprintf(tw, "Address\t%s\n", user.Address)
		fmt.Fprintf(tw, "Image\t%s\n", user.ProfileImage)
		if doc := a.d.Profile.Doctor(); doc != nil {
			fmt.Fprintf(tw, "Specialist\t%s\n", doc.Specialist)
			fmt.Fprintf(tw, "Fees\t%.2f\n", doc.Fees)
		}
	})
	return nil
}

func cmdUpdateProfile(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var req client.ProfileUpdate
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.ContactNumber, "contact", "", "contact number")
	fs.StringVar(&req.Address, "address", "", "postal address")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	return a.d.Profile.Update(ctx, req)
}

func cmdUploadImage(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	return a.d.Profile.UploadImage(ctx, fs.Arg(0))
}

func cmdUpdateDoctor(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var req client.DoctorUpdate
	fs.StringVar(&req.Specialist, "specialist", "", "specialization")
	fees := fs.String("fees", "", "consultation fee")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *fees != "" {
		fee, err := parseFee(*fees)
		if err != nil {
			return err
		}
		req.Fees = &fee
	}
	return a.d.Profile.UpdateDoctor(ctx, req)
}

func cmdDoctors(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	query := fs.String("q", "", "search name or specialty")
	specialty := fs.String("specialty", domain.AllSpecialty, "specialty filter")
	sortKey := fs.String("sort", string(domain.SortNameAsc), "name | fee-asc | fee-desc")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	dir := a.d.Directory
	if err := dir.Refresh(ctx); err != nil {
		return err
	}
	dir.SetQuery(*query)
	dir.SetSpecialty(*specialty)
	dir.SetSort(domain.SortKey(*sortKey))

	table(a.out, "ID\tNAME\tSPECIALIST\tFEES\tSTATUS", func(tw *tabwriter.Writer) {
		for _, doc := range dir.Doctors() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", doc.ID, doc.DoctorName(), doc.Specialist, doc.Fees, doc.Status)
		}
	})
	stats := dir.Stats()
	fmt.Fprintf(a.out, "%d doctors, %d specialties, average fee %d\n", stats.Total, stats.Specialties, stats.AverageFee)
	return nil
}

func cmdBookable(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Users.RefreshDoctors(ctx); err != nil {
		return err
	}
	table(a.out, "ID\tNAME\tEMAIL", func(tw *tabwriter.Writer) {
		for _, u := range a.d.Users.Doctors() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
	})
	return nil
}

func cmdApply(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	specialist := fs.String("specialist", "", "specialization")
	fees := fs.String("fees", "", "consultation fee")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *fees == "" {
		return apperrors.Validation("fees is required")
	}
	fee, err := parseFee(*fees)
	if err != nil {
		return err
	}
	if err := a.d.Application.Load(ctx); err != nil {
		return err
	}
	if err := a.d.Application.Apply(ctx, *specialist, fee); err != nil {
		return err
	}
	return printApplication(a)
}

func cmdApplication(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Application.Load(ctx); err != nil {
		return err
	}
	return printApplication(a)
}

func printApplication(a *app) error {
	application := a.d.Application
	fmt.Fprintf(a.out, "Application: %s\n", application.State())
	if p := application.Profile(); p != nil {
		fmt.Fprintf(a.out, "Specialist: %s\nFees: %.2f\n", p.Specialist, p.Fees)
	}
	if application.Locked() {
		fmt.Fprintln(a.out, "Your application is under review.")
	}
	return nil
}

func parseDecision(s string) (domain.ApplicationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted":
		return domain.ApplicationAccepted, nil
	case "reject", "rejected":
		return domain.ApplicationRejected, nil
	}
	return "", apperrors.Validation("decision must be accept or reject")
}

func cmdReview(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "doctor profile id")
	decision := fs.String("decision", "", "accept | reject")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	status, err := parseDecision(*decision)
	if err != nil {
		return err
	}
	if err := a.d.Directory.Refresh(ctx); err != nil {
		return err
	}
	return a.d.ReviewDoctor(ctx, *id, status)
}

func cmdRemoveDoctor(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "doctor profile id")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Directory.Refresh(ctx); err != nil {
		return err
	}
	return a.d.RemoveDoctor(ctx, *id)
}

func cmdAppointments(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	list, err := a.d.Appointments.ListMine(ctx)
	if err != nil {
		return err
	}
	printAppointments(a, list)
	return nil
}

func printAppointments(a *app, list []client.Appointment) {
	appts := a.d.Appointments
	table(a.out, "ID\tDATE\tDOCTOR\tPATIENT\tSTATUS\tACTIONS", func(tw *tabwriter.Writer) {
		for _, appt := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				appt.ID, formatTime(appt.DateTime), appt.DoctorName(), appt.PatientName(), appt.Status,
				describeActions(appts.ActionsFor(appt)))
		}
	})
	counts := appts.Summary()
	fmt.Fprintf(a.out, "%d pending, %d accepted, %d rejected, %d completed\n",
		counts[domain.AppointmentPending], counts[domain.AppointmentAccepted],
		counts[domain.AppointmentRejected], counts[domain.AppointmentCompleted])
}

func describeActions(actions dashboard.Actions) string {
	var out []string
	if actions.Edit {
		out = append(out, "reschedule")
	}
	if actions.Delete {
		out = append(out, "cancel")
	}
	for _, s := range actions.Statuses {
		out = append(out, "set "+strings.ToLower(string(s)))
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

func cmdBook(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	doctorID := fs.String("doctor", "", "doctor user id (see \"bookable\")")
	at := fs.String("at", "", "date-time, e.g. 2031-05-04T09:30")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	when, err := domain.ParseDateTime(*at)
	if err != nil {
		return err
	}
	if err := a.d.Appointments.Create(ctx, *doctorID, when); err != nil {
		return err
	}
	printAppointments(a, a.d.Appointments.List())
	return nil
}

func cmdReschedule(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "appointment id")
	at := fs.String("at", "", "new date-time, e.g. 2031-05-04T09:30")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	when, err := domain.ParseDateTime(*at)
	if err != nil {
		return err
	}
	if err := a.d.Appointments.Refresh(ctx); err != nil {
		return err
	}
	return a.d.Appointments.UpdateSchedule(ctx, *id, when)
}

func cmdSetStatus(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "appointment id")
	status := fs.String("status", "", "Accepted | Rejected | Completed")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Appointments.Refresh(ctx); err != nil {
		return err
	}
	return a.d.Appointments.UpdateStatus(ctx, *id, domain.AppointmentStatus(strings.TrimSpace(*status)))
}

func cmdCancel(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "appointment id")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Appointments.Refresh(ctx); err != nil {
		return err
	}
	return a.d.Appointments.Delete(ctx, *id)
}

func cmdUsers(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := a.d.Users.Refresh(ctx); err != nil {
		return err
	}
	table(a.out, "ID\tNAME\tEMAIL\tROLE\tCONTACT", func(tw *tabwriter.Writer) {
		for _, u := range a.d.Users.All() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.ContactNumber)
		}
	})
	return nil
}
