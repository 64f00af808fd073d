// Package dashboard holds the controllers behind each dashboard page. Every
// controller checks the role and lifecycle rules locally before calling the
// API, re-fetches after a successful change and reports the outcome as a
// toast.
package dashboard

import (
	"context"
	"sync"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/session"

	"github.com/sirupsen/logrus"
)

// Dashboard wires the session to the page controllers and keeps the
// navigation menu in step with the signed-in role.
type Dashboard struct {
	Session *session.Store
	API     *client.Client
	Toasts  *Toaster

	Appointments *Appointments
	Application  *Application
	Directory    *Directory
	Profile      *Profile
	Users        *Users

	log         *logrus.Entry
	unsubscribe func()

	mu   sync.Mutex
	menu []domain.MenuItem
	page string
}

// New builds a dashboard over api and store. api should read its token from
// store.
func New(api *client.Client, store *session.Store, toasts *Toaster, log *logger.Logger) *Dashboard {
	if log == nil {
		log = logger.Discard()
	}
	d := &Dashboard{
		Session:      store,
		API:          api,
		Toasts:       toasts,
		Appointments: NewAppointments(api, store, toasts),
		Application:  NewApplication(api, store, toasts),
		Directory:    NewDirectory(api, store, toasts),
		Profile:      NewProfile(api, store, toasts),
		Users:        NewUsers(api, store, toasts),
		log:          log.WithComponent("dashboard"),
	}
	d.identityChanged(store.CurrentUser())
	d.unsubscribe = store.OnIdentityChanged(d.identityChanged)
	return d
}

func (d *Dashboard) identityChanged(user *client.User) {
	menu := domain.MenuFor(user.Actor().Role)

	d.mu.Lock()
	d.menu = menu
	switch {
	case menu == nil:
		d.page = ""
	case !domain.HasPage(menu, d.page):
		d.page = domain.PageDashboard
	}
	page := d.page
	d.mu.Unlock()

	d.log.WithFields(logrus.Fields{"role": user.Actor().Role, "page": page}).Debug("identity changed")
}

// Menu returns the navigation for the signed-in role; nil when signed out.
func (d *Dashboard) Menu() []domain.MenuItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.MenuItem(nil), d.menu...)
}

// Page returns the active page key, or "" when signed out.
func (d *Dashboard) Page() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

// Navigate switches to page when the current menu offers it.
func (d *Dashboard) Navigate(page string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.menu == nil {
		return apperrors.Auth("not logged in")
	}
	if !domain.HasPage(d.menu, page) {
		return apperrors.Permission("page %q is not available", page)
	}
	d.page = page
	return nil
}

// Restore re-fetches the identity behind a token persisted by an earlier
// run. It is a no-op when signed out.
func (d *Dashboard) Restore(ctx context.Context) error {
	if !d.Session.IsAuthenticated() {
		return nil
	}
	return report(d.Toasts, d.Session.Refresh(ctx, d.API))
}

func (d *Dashboard) Login(ctx context.Context, creds client.Credentials) error {
	res, err := d.Session.Login(ctx, d.API, creds)
	if err != nil {
		return report(d.Toasts, err)
	}
	d.log.WithField("user_id", res.User.Actor().ID).Info("logged in")
	d.Toasts.Success("Login successful")
	return nil
}

// Register creates an account. The caller logs in separately.
func (d *Dashboard) Register(ctx context.Context, req client.Registration) error {
	if _, err := d.API.Register(ctx, req); err != nil {
		return report(d.Toasts, err)
	}
	d.Toasts.Success("Registration successful, please login")
	return nil
}

func (d *Dashboard) Logout() {
	d.Session.Logout()
	d.Toasts.Success("Logged out")
}

// ReviewDoctor accepts or rejects the listed profile id and refreshes the
// directory.
func (d *Dashboard) ReviewDoctor(ctx context.Context, id string, decision domain.ApplicationStatus) error {
	doctor, ok := d.Directory.Find(id)
	if !ok {
		return report(d.Toasts, apperrors.NotFound("doctor not found"))
	}
	if err := d.Application.Review(ctx, doctor, decision); err != nil {
		return err
	}
	return d.Directory.Refresh(ctx)
}

// RemoveDoctor deletes the listed profile id and refreshes the directory.
func (d *Dashboard) RemoveDoctor(ctx context.Context, id string) error {
	doctor, ok := d.Directory.Find(id)
	if !ok {
		return report(d.Toasts, apperrors.NotFound("doctor not found"))
	}
	if err := d.Application.Remove(ctx, doctor); err != nil {
		return err
	}
	return d.Directory.Refresh(ctx)
}

// Close stops listening for identity changes and closes every controller.
func (d *Dashboard) Close() {
	d.unsubscribe()
	d.Appointments.Close()
	d.Application.Close()
	d.Directory.Close()
	d.Profile.Close()
	d.Users.Close()
	d.Toasts.Dismiss()
}
