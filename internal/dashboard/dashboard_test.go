package dashboard

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/routes"
	"healthcare-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type backend struct {
	t      *testing.T
	server *httptest.Server
	store  *repository.Store
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	cfg := &config.Config{
		Origin:               "http://localhost:5173",
		JWTSecret:            "test-secret",
		JWTExpirationMinutes: 60,
		UploadDir:            t.TempDir(),
		RateLimit:            config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	store := repository.NewMemoryStore()
	server := httptest.NewServer(routes.NewRouter(store, cfg, logger.Discard()))
	t.Cleanup(server.Close)
	return &backend{t: t, server: server, store: store}
}

// open returns a signed-out dashboard talking to the backend.
func (b *backend) open() *Dashboard {
	store := session.New(session.NewMemoryStorage())
	api := client.New(b.server.URL+"/api", store)
	d := New(api, store, NewToaster(time.Minute), nil)
	b.t.Cleanup(d.Close)
	return d
}

// signup registers name through the dashboard and logs in.
func (b *backend) signup(name, email string) *Dashboard {
	b.t.Helper()
	d := b.open()
	ctx := context.Background()
	require.NoError(b.t, d.Register(ctx, client.Registration{
		Name: name, Email: email, Password: "secret123", ContactNumber: "555-0100",
	}))
	require.NoError(b.t, d.Login(ctx, client.Credentials{Email: email, Password: "secret123"}))
	return d
}

func (b *backend) admin() *Dashboard {
	b.t.Helper()
	user := &models.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	require.NoError(b.t, user.SetPassword("secret123"))
	require.NoError(b.t, b.store.Users.Create(context.Background(), user))

	d := b.open()
	require.NoError(b.t, d.Login(context.Background(), client.Credentials{Email: user.Email, Password: "secret123"}))
	return d
}

func pages(menu []domain.MenuItem) []string {
	out := make([]string, 0, len(menu))
	for _, item := range menu {
		out = append(out, item.Page)
	}
	return out
}

func TestMenuFollowsSession(t *testing.T) {
	b := newBackend(t)
	d := b.open()
	assert.Nil(t, d.Menu())
	assert.True(t, apperrors.IsAuth(d.Navigate(domain.PageProfile)))

	err := d.Login(context.Background(), client.Credentials{Email: "nobody@example.com", Password: "wrong-pass"})
	assert.True(t, apperrors.IsAuth(err))
	assert.False(t, d.Session.IsAuthenticated())

	d = b.signup("Asha", "asha@example.com")
	assert.Equal(t, []string{
		domain.PageDashboard, domain.PageProfile, domain.PageAppointments,
		domain.PageCreateAppointment, domain.PageApplyDoctor,
	}, pages(d.Menu()))
	assert.Equal(t, domain.PageDashboard, d.Page())

	require.NoError(t, d.Navigate(domain.PageApplyDoctor))
	assert.True(t, apperrors.IsPermission(d.Navigate(domain.PageUsers)))
	assert.Equal(t, domain.PageApplyDoctor, d.Page())

	d.Logout()
	assert.Nil(t, d.Menu())
	assert.Equal(t, "", d.Page())
}

func TestDoctorApplicationFlow(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.admin()
	patient := b.signup("Asha", "asha@example.com")
	applicant := b.signup("Ravi", "ravi@example.com")

	require.NoError(t, applicant.Application.Load(ctx))
	assert.Equal(t, NoApplication, applicant.Application.State())
	assert.True(t, applicant.Application.CanApply())

	err := applicant.Application.Apply(ctx, "  ", 50)
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, applicant.Application.Apply(ctx, "Cardiology", 50))
	assert.Equal(t, ApplicationPending, applicant.Application.State())
	assert.True(t, applicant.Application.Locked())
	assert.False(t, applicant.Application.CanApply())

	err = applicant.Application.Apply(ctx, "Cardiology", 50)
	assert.True(t, apperrors.IsState(err))
	assert.Equal(t, "your doctor application is under review", apperrors.MessageOf(err))

	require.NoError(t, patient.Directory.Refresh(ctx))
	assert.Empty(t, patient.Directory.Doctors())

	require.NoError(t, admin.Directory.Refresh(ctx))
	listed := admin.Directory.Doctors()
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ApplicationPending, listed[0].Status)

	err = admin.RemoveDoctor(ctx, listed[0].ID)
	assert.True(t, apperrors.IsState(err))

	err = patient.ReviewDoctor(ctx, listed[0].ID, domain.ApplicationAccepted)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, admin.ReviewDoctor(ctx, listed[0].ID, domain.ApplicationAccepted))
	listed = admin.Directory.Doctors()
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ApplicationAccepted, listed[0].Status)

	require.NoError(t, patient.Directory.Refresh(ctx))
	visible := patient.Directory.Doctors()
	require.Len(t, visible, 1)
	assert.Equal(t, "Ravi", visible[0].DoctorName())
	assert.Equal(t, []string{"Cardiology"}, patient.Directory.Specialties())

	patient.Directory.SetQuery("derm")
	assert.Empty(t, patient.Directory.Doctors())
	patient.Directory.SetQuery("cardio")
	assert.Len(t, patient.Directory.Doctors(), 1)

	// The applicant learns about the promotion on the next identity refresh.
	require.NoError(t, applicant.Navigate(domain.PageApplyDoctor))
	require.NoError(t, applicant.Profile.Load(ctx))
	assert.Equal(t, domain.RoleDoctor, applicant.Session.CurrentUser().Role)
	assert.NotContains(t, pages(applicant.Menu()), domain.PageApplyDoctor)
	assert.Equal(t, domain.PageDashboard, applicant.Page())
	require.NotNil(t, applicant.Profile.Doctor())
	assert.Equal(t, "Cardiology", applicant.Profile.Doctor().Specialist)

	fee := 75.0
	require.NoError(t, applicant.Profile.UpdateDoctor(ctx, client.DoctorUpdate{Fees: &fee}))
	assert.Equal(t, 75.0, applicant.Profile.Doctor().Fees)
}

func TestAppointmentLifecycle(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.admin()
	patient := b.signup("Asha", "asha@example.com")
	doc := b.signup("Ravi", "ravi@example.com")

	require.NoError(t, doc.Application.Apply(ctx, "Dermatology", 40))
	require.NoError(t, admin.Directory.Refresh(ctx))
	require.Len(t, admin.Directory.Doctors(), 1)
	require.NoError(t, admin.ReviewDoctor(ctx, admin.Directory.Doctors()[0].ID, domain.ApplicationAccepted))
	require.NoError(t, doc.Profile.Load(ctx))

	require.NoError(t, patient.Users.RefreshDoctors(ctx))
	doctors := patient.Users.Doctors()
	require.Len(t, doctors, 1)

	at := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	require.NoError(t, patient.Appointments.Create(ctx, doctors[0].ID, at))
	mine := patient.Appointments.List()
	require.Len(t, mine, 1)
	assert.Equal(t, domain.AppointmentPending, mine[0].Status)
	assert.True(t, patient.Appointments.ActionsFor(mine[0]).Edit)

	err := doc.Appointments.Create(ctx, doctors[0].ID, at)
	assert.True(t, apperrors.IsPermission(err))

	later := at.Add(time.Hour)
	require.NoError(t, patient.Appointments.UpdateSchedule(ctx, mine[0].ID, later))
	mine = patient.Appointments.List()
	assert.True(t, later.Equal(mine[0].DateTime))

	require.NoError(t, doc.Appointments.Refresh(ctx))
	incoming := doc.Appointments.List()
	require.Len(t, incoming, 1)
	assert.Equal(t, "Asha", incoming[0].PatientName())
	require.NoError(t, doc.Appointments.UpdateStatus(ctx, incoming[0].ID, domain.AppointmentAccepted))

	require.NoError(t, patient.Appointments.Refresh(ctx))
	before := patient.Appointments.List()
	err = patient.Appointments.Delete(ctx, before[0].ID)
	assert.True(t, apperrors.IsState(err))
	require.NoError(t, patient.Appointments.Refresh(ctx))
	assert.Equal(t, before, patient.Appointments.List())

	require.NoError(t, doc.Appointments.Refresh(ctx))
	require.NoError(t, doc.Appointments.UpdateStatus(ctx, incoming[0].ID, domain.AppointmentCompleted))
	assert.Equal(t, 1, doc.Appointments.Summary()[domain.AppointmentCompleted])
}

func TestUsersListIsAdminOnly(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.admin()
	patient := b.signup("Asha", "asha@example.com")

	err := patient.Users.Refresh(ctx)
	assert.True(t, apperrors.IsPermission(err))
	assert.Empty(t, patient.Users.All())

	require.NoError(t, admin.Users.Refresh(ctx))
	assert.Len(t, admin.Users.All(), 2)
	assert.Equal(t, 1, admin.Users.CountByRole()[domain.RoleUser])
}

func TestProfileUpdateAndImage(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	d := b.signup("Asha", "asha@example.com")

	var seen []string
	unsubscribe := d.Session.OnIdentityChanged(func(u *client.User) {
		if u != nil {
			seen = append(seen, u.Name)
		}
	})
	defer unsubscribe()

	require.NoError(t, d.Profile.Update(ctx, client.ProfileUpdate{Name: "Asha Rao", Address: "12 Hill Rd"}))
	assert.Equal(t, "Asha Rao", d.Profile.User().Name)
	assert.Contains(t, seen, "Asha Rao")

	err := d.Profile.Update(ctx, client.ProfileUpdate{Email: "not-an-email"})
	assert.True(t, apperrors.IsValidation(err))

	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("plain text, not a picture"), 0o600))
	err = d.Profile.UploadImage(ctx, text)
	assert.True(t, apperrors.IsValidation(err))

	png := filepath.Join(dir, "avatar.png")
	require.NoError(t, os.WriteFile(png, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), 0o600))
	require.NoError(t, d.Profile.UploadImage(ctx, png))
	assert.NotEmpty(t, d.Session.CurrentUser().ProfileImage)

	err = d.Profile.UpdateDoctor(ctx, client.DoctorUpdate{Specialist: "Cardiology"})
	assert.True(t, apperrors.IsPermission(err))
}

func TestRestoreUsesPersistedToken(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	first := b.signup("Asha", "asha@example.com")
	token := first.Session.Token()

	storage := session.NewMemoryStorage()
	require.NoError(t, storage.Save(session.TokenKey, token))
	store := session.New(storage)
	d := New(client.New(b.server.URL+"/api", store), store, NewToaster(time.Minute), nil)
	defer d.Close()

	assert.Nil(t, d.Menu())
	require.NoError(t, d.Restore(ctx))
	assert.Equal(t, "Asha", d.Session.CurrentUser().Name)
	assert.Contains(t, pages(d.Menu()), domain.PageApplyDoctor)
}
