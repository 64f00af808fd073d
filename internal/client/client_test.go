package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticToken string

func (s *staticToken) Token() string { return string(*s) }

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

// login seeds a user with role and returns a client authenticated as them.
func (b *backend) login(name string, role domain.Role) (*Client, *User) {
	b.t.Helper()
	user := &models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	require.NoError(b.t, user.SetPassword("secret123"))
	require.NoError(b.t, b.store.Users.Create(context.Background(), user))

	token := new(staticToken)
	c := New(b.server.URL+"/api", token)
	res, err := c.Login(context.Background(), Credentials{Email: user.Email, Password: "secret123"})
	require.NoError(b.t, err)
	*token = staticToken(res.Token)
	return c, res.User
}

func TestRegisterAndLogin(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c := New(b.server.URL+"/api", nil)

	user, err := c.Register(ctx, Registration{
		Name: "Asha", Email: "asha@example.com", Password: "secret123", ContactNumber: "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)

	_, err = c.Register(ctx, Registration{
		Name: "Asha", Email: "asha@example.com", Password: "secret123", ContactNumber: "555-0101",
	})
	assert.True(t, apperrors.IsAuth(err))
	assert.Equal(t, "User with this email already exists", apperrors.MessageOf(err))

	_, err = c.Login(ctx, Credentials{Email: "asha@example.com", Password: "wrong-pass"})
	assert.True(t, apperrors.IsAuth(err))
	assert.Equal(t, "Invalid email or password", apperrors.MessageOf(err))

	res, err := c.Login(ctx, Credentials{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Asha", res.User.Name)
}

func TestClientSideValidation(t *testing.T) {
	c := New("http://127.0.0.1:1/api", nil)
	ctx := context.Background()

	_, err := c.Register(ctx, Registration{Email: "x@example.com", Password: "secret123", ContactNumber: "1"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Name is required", apperrors.MessageOf(err))

	_, err = c.Apply(ctx, DoctorApplication{Specialist: "Cardiology", Fees: -1})
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.CreateAppointment(ctx, NewAppointment{DoctorID: "d-1"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.RescheduleAppointment(ctx, "a-1", time.Time{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url+"/api", nil).GetUserInfo(context.Background())
	assert.True(t, apperrors.IsNetwork(err))
}

func TestErrorForStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   apperrors.Kind
	}{
		{http.StatusBadRequest, apperrors.KindValidation},
		{http.StatusUnauthorized, apperrors.KindAuth},
		{http.StatusForbidden, apperrors.KindPermission},
		{http.StatusNotFound, apperrors.KindNotFound},
		{http.StatusConflict, apperrors.KindState},
		{http.StatusTooManyRequests, apperrors.KindNetwork},
		{http.StatusInternalServerError, apperrors.KindNetwork},
	}
	for _, tt := range tests {
		err := errorForStatus(tt.status, "boom")
		assert.Equal(t, tt.kind, apperrors.KindOf(err), tt.status)
		assert.Equal(t, "boom", apperrors.MessageOf(err))
	}

	assert.Equal(t, "request failed with status 502", apperrors.MessageOf(errorForStatus(http.StatusBadGateway, "")))
}

func TestNonJSONFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, nil).GetAllUsers(context.Background())
	assert.True(t, apperrors.IsNetwork(err))
	assert.Equal(t, "request failed with status 502", apperrors.MessageOf(err))
}

func TestBearerTokenAttached(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+"|"+r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","token":"t","user":{"id":"u"}}`))
	}))
	defer server.Close()

	token := staticToken("abc")
	c := New(server.URL, &token)
	_, _ = c.GetUserInfo(context.Background())
	_, _ = c.Login(context.Background(), Credentials{Email: "a@example.com", Password: "p"})

	assert.Equal(t, []string{"/user/getUserInfo|Bearer abc", "/user/login|"}, seen)
}

func TestAppointmentFlow(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	admin, _ := b.login("Root", domain.RoleAdmin)
	applicant, applicantUser := b.login("Meera", domain.RoleUser)
	patient, _ := b.login("Ravi", domain.RoleUser)

	_, err := applicant.ApplicationStatus(ctx)
	assert.True(t, apperrors.IsNotFound(err))

	profile, err := applicant.Apply(ctx, DoctorApplication{Specialist: "Cardiology", Fees: 400})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, profile.Status)

	visible, err := patient.GetAllDoctors(ctx, DoctorQuery{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	reviewed, err := admin.SetDoctorStatus(ctx, profile.ID, domain.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, reviewed.Status)

	visible, err = patient.GetAllDoctors(ctx, DoctorQuery{Query: "meer"})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Meera", visible[0].DoctorName())

	doctors, err := patient.DoctorList(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)

	created, err := patient.CreateAppointment(ctx, NewAppointment{DoctorID: applicantUser.ID, DateTime: time.Now().Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, created.Status)

	mine, err := patient.AppointmentsByUser(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Meera", mine[0].DoctorName())
	assert.Equal(t, "Ravi", mine[0].PatientName())

	_, err = applicant.UpdateAppointmentStatus(ctx, created.ID, domain.AppointmentAccepted)
	require.NoError(t, err)

	err = patient.DeleteAppointment(ctx, created.ID)
	assert.True(t, apperrors.IsState(err))

	theirs, err := applicant.AppointmentsOfDoctor(ctx)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, domain.AppointmentAccepted, theirs[0].Status)

	_, err = patient.RescheduleAppointment(ctx, created.ID, time.Now().Add(48*time.Hour))
	assert.True(t, apperrors.IsState(err))

	fee := 550.0
	updated, err := applicant.UpdateDoctor(ctx, DoctorUpdate{Fees: &fee})
	require.NoError(t, err)
	assert.Equal(t, 550.0, updated.Fees)

	info, err := applicant.GetDoctorInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", info.Specialist)

	users, err := admin.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = patient.GetAllUsers(ctx)
	assert.True(t, apperrors.IsPermission(err))

	require.NoError(t, admin.DeleteDoctor(ctx, profile.ID))
	me, err := applicant.GetUserInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, me.Role)
}

func TestProfileUpdateAndUpload(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c, _ := b.login("Ravi", domain.RoleUser)

	user, err := c.UpdateProfile(ctx, ProfileUpdate{Address: "12 Lake Road"})
	require.NoError(t, err)
	assert.Equal(t, "12 Lake Road", user.Address)
	assert.Equal(t, "Ravi", user.Name)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	user, err = c.UploadProfileImage(ctx, "me.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ProfileImage, "/uploads/"))

	_, err = c.UploadProfileImage(ctx, "me.png", strings.NewReader("plain text"))
	assert.True(t, apperrors.IsValidation(err))
}
