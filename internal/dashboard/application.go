package dashboard

import (
	"context"
	"strings"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
)

// ApplicationAPI is the part of the API client the doctor application uses.
type ApplicationAPI interface {
	Apply(ctx context.Context, req client.DoctorApplication) (*client.DoctorProfile, error)
	ApplicationStatus(ctx context.Context) (*client.DoctorProfile, error)
	SetDoctorStatus(ctx context.Context, profileID string, status domain.ApplicationStatus) (*client.DoctorProfile, error)
	DeleteDoctor(ctx context.Context, profileID string) error
}

// Notifier announces that the signed-in identity may have changed.
type Notifier interface {
	Identity
	NotifyIdentityChanged()
}

// ApplicationState is where the caller's doctor application stands.
type ApplicationState string

const (
	NoApplication       ApplicationState = "None"
	ApplicationPending  ApplicationState = ApplicationState(domain.ApplicationPending)
	ApplicationAccepted ApplicationState = ApplicationState(domain.ApplicationAccepted)
	ApplicationRejected ApplicationState = ApplicationState(domain.ApplicationRejected)
)

// Application drives the apply-for-doctor form and the admin review
// actions.
type Application struct {
	*lifecycle
	api     ApplicationAPI
	session Notifier
	toast   *Toaster

	profile *client.DoctorProfile
}

func NewApplication(api ApplicationAPI, session Notifier, toast *Toaster) *Application {
	return &Application{lifecycle: newLifecycle(), api: api, session: session, toast: toast}
}

// Load fetches the caller's application. Never having applied is not an
// error.
func (a *Application) Load(ctx context.Context) error {
	return report(a.toast, a.load(ctx))
}

func (a *Application) load(ctx context.Context) error {
	reqCtx, done, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	profile, err := a.api.ApplicationStatus(reqCtx)
	if err != nil && !apperrors.IsNotFound(err) {
		return a.settle(err)
	}
	return a.commit(func() { a.profile = profile })
}

// State returns the caller's application state.
func (a *Application) State() ApplicationState {
	state := NoApplication
	a.read(func() {
		if a.profile != nil {
			state = ApplicationState(a.profile.Status)
		}
	})
	return state
}

// Profile returns a copy of the caller's application, or nil.
func (a *Application) Profile() *client.DoctorProfile {
	var out *client.DoctorProfile
	a.read(func() {
		if a.profile != nil {
			cp := *a.profile
			out = &cp
		}
	})
	return out
}

// Locked reports whether the form is read-only because an application is
// under review.
func (a *Application) Locked() bool {
	return a.State() == ApplicationPending
}

func (a *Application) existing() *domain.ApplicationStatus {
	var out *domain.ApplicationStatus
	a.read(func() {
		if a.profile != nil {
			s := a.profile.Status
			out = &s
		}
	})
	return out
}

// CanApply reports whether the form may be submitted.
func (a *Application) CanApply() bool {
	return domain.CanApply(actorOf(a.session).Role, a.existing())
}

// Apply submits an application and reloads its state.
func (a *Application) Apply(ctx context.Context, specialist string, fees float64) error {
	specialist = strings.TrimSpace(specialist)
	if err := domain.CheckApply(actorOf(a.session), a.existing(), specialist, fees); err != nil {
		return report(a.toast, err)
	}

	reqCtx, done, err := a.begin(ctx)
	if err != nil {
		return err
	}
	_, err = a.api.Apply(reqCtx, client.DoctorApplication{Specialist: specialist, Fees: fees})
	done()
	if err := a.settle(err); err != nil {
		return report(a.toast, err)
	}

	a.toast.Success("Doctor application submitted successfully")
	return report(a.toast, a.load(ctx))
}

// Review accepts or rejects doctor (admin).
func (a *Application) Review(ctx context.Context, doctor client.DoctorProfile, decision domain.ApplicationStatus) error {
	if err := domain.CheckReview(actorOf(a.session), doctor.Status, decision); err != nil {
		return report(a.toast, err)
	}
	return a.admin(ctx, "Doctor "+strings.ToLower(string(decision))+" successfully", func(ctx context.Context) error {
		_, err := a.api.SetDoctorStatus(ctx, doctor.ID, decision)
		return err
	})
}

// Remove deletes a reviewed doctor profile (admin).
func (a *Application) Remove(ctx context.Context, doctor client.DoctorProfile) error {
	if err := domain.CheckRemoval(actorOf(a.session), doctor.Status); err != nil {
		return report(a.toast, err)
	}
	return a.admin(ctx, "Doctor deleted successfully", func(ctx context.Context) error {
		return a.api.DeleteDoctor(ctx, doctor.ID)
	})
}

func (a *Application) admin(ctx context.Context, message string, call func(context.Context) error) error {
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
	a.session.NotifyIdentityChanged()
	return nil
}
