package dashboard

import (
	"context"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
)

// AppointmentAPI is the part of the API client the appointment list uses.
type AppointmentAPI interface {
	CreateAppointment(ctx context.Context, req client.NewAppointment) (*client.Appointment, error)
	AppointmentsByUser(ctx context.Context) ([]client.Appointment, error)
	AppointmentsOfDoctor(ctx context.Context) ([]client.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*client.Appointment, error)
	RescheduleAppointment(ctx context.Context, id string, at time.Time) (*client.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// Actions lists what the signed-in user may do with one appointment.
type Actions struct {
	Edit     bool
	Delete   bool
	Statuses []domain.AppointmentStatus
}

// Appointments checks every change against the lifecycle rules before it
// reaches the server and re-fetches the list after each success.
type Appointments struct {
	*lifecycle
	api   AppointmentAPI
	who   Identity
	toast *Toaster
	now   func() time.Time

	items []client.Appointment
}

func NewAppointments(api AppointmentAPI, who Identity, toast *Toaster) *Appointments {
	return &Appointments{
		lifecycle: newLifecycle(),
		api:       api,
		who:       who,
		toast:     toast,
		now:       time.Now,
	}
}

// List returns the last fetched appointments, ordered by date-time.
func (a *Appointments) List() []client.Appointment {
	var out []client.Appointment
	a.read(func() {
		out = make([]client.Appointment, len(a.items))
		copy(out, a.items)
	})
	return out
}

// Find returns the fetched appointment with id.
func (a *Appointments) Find(id string) (client.Appointment, bool) {
	var (
		found client.Appointment
		ok    bool
	)
	a.read(func() {
		for _, item := range a.items {
			if item.ID == id {
				found, ok = item, true
				return
			}
		}
	})
	return found, ok
}

// Refresh re-fetches the list. Doctors see appointments booked with them,
// everyone else the ones they booked.
func (a *Appointments) Refresh(ctx context.Context) error {
	return report(a.toast, a.refresh(ctx))
}

// ListMine re-fetches and returns the signed-in user's appointments.
func (a *Appointments) ListMine(ctx context.Context) ([]client.Appointment, error) {
	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return a.List(), nil
}

func (a *Appointments) refresh(ctx context.Context) error {
	reqCtx, done, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	var items []client.Appointment
	if actorOf(a.who).Role == domain.RoleDoctor {
		items, err = a.api.AppointmentsOfDoctor(reqCtx)
	} else {
		items, err = a.api.AppointmentsByUser(reqCtx)
	}
	if err != nil {
		return a.settle(err)
	}
	return a.commit(func() { a.items = items })
}

// ActionsFor reports what the signed-in user may do with appt.
func (a *Appointments) ActionsFor(appt client.Appointment) Actions {
	actor := actorOf(a.who)
	ref := appt.Ref()
	actions := Actions{
		Edit:   domain.CanEditAppointment(actor, ref),
		Delete: domain.CanDeleteAppointment(actor, ref),
	}
	if domain.CanChangeStatus(actor, ref) {
		actions.Statuses = domain.NextStatuses(ref.Status)
	}
	return actions
}

// mutate runs call and, when it succeeds, toasts message and re-fetches.
func (a *Appointments) mutate(ctx context.Context, message string, call func(context.Context) error) error {
	reqCtx, done, err := a.begin(ctx)
	if err != nil {
		return err
	}
	err = call(reqCtx)
	done()
	if err := a.settle(err); err != nil {
		return report(a.toast, err)
	}
	a.toast.Success(message)
	return report(a.toast, a.refresh(ctx))
}

// Create books an appointment with doctorID at the given time.
func (a *Appointments) Create(ctx context.Context, doctorID string, at time.Time) error {
	if err := domain.CheckCreate(actorOf(a.who), doctorID, at, a.now()); err != nil {
		return report(a.toast, err)
	}
	return a.mutate(ctx, "Appointment created successfully", func(ctx context.Context) error {
		_, err := a.api.CreateAppointment(ctx, client.NewAppointment{DoctorID: doctorID, DateTime: at})
		return err
	})
}

func (a *Appointments) lookup(id string) (client.Appointment, error) {
	appt, ok := a.Find(id)
	if !ok {
		return appt, apperrors.NotFound("appointment not found")
	}
	return appt, nil
}

// UpdateSchedule moves a pending appointment to a new time.
func (a *Appointments) UpdateSchedule(ctx context.Context, id string, at time.Time) error {
	appt, err := a.lookup(id)
	if err != nil {
		return report(a.toast, err)
	}
	if err := domain.CheckReschedule(actorOf(a.who), appt.Ref(), at, a.now()); err != nil {
		return report(a.toast, err)
	}
	return a.mutate(ctx, "Appointment updated successfully", func(ctx context.Context) error {
		_, err := a.api.RescheduleAppointment(ctx, id, at)
		return err
	})
}

// UpdateStatus moves an appointment along its lifecycle.
func (a *Appointments) UpdateStatus(ctx context.Context, id string, to domain.AppointmentStatus) error {
	appt, err := a.lookup(id)
	if err != nil {
		return report(a.toast, err)
	}
	if err := domain.CheckStatusChange(actorOf(a.who), appt.Ref(), to); err != nil {
		return report(a.toast, err)
	}
	return a.mutate(ctx, "Appointment "+string(to), func(ctx context.Context) error {
		_, err := a.api.UpdateAppointmentStatus(ctx, id, to)
		return err
	})
}

// Delete removes a pending appointment.
func (a *Appointments) Delete(ctx context.Context, id string) error {
	appt, err := a.lookup(id)
	if err != nil {
		return report(a.toast, err)
	}
	if err := domain.CheckDelete(actorOf(a.who), appt.Ref()); err != nil {
		return report(a.toast, err)
	}
	return a.mutate(ctx, "Appointment deleted successfully", func(ctx context.Context) error {
		return a.api.DeleteAppointment(ctx, id)
	})
}

// Summary counts the fetched appointments by status.
func (a *Appointments) Summary() map[domain.AppointmentStatus]int {
	counts := make(map[domain.AppointmentStatus]int)
	a.read(func() {
		for _, item := range a.items {
			counts[item.Status]++
		}
	})
	return counts
}
