package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/dashboard"
	"healthcare-dashboard/internal/logger"
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

type cli struct {
	t       *testing.T
	baseURL string
	storage session.Storage
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	cfg := &config.Config{
		Origin:               "http://localhost:5173",
		JWTSecret:            "test-secret",
		JWTExpirationMinutes: 60,
		UploadDir:            t.TempDir(),
		RateLimit:            config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	server := httptest.NewServer(routes.NewRouter(repository.NewMemoryStore(), cfg, logger.Discard()))
	t.Cleanup(server.Close)
	return &cli{t: t, baseURL: server.URL + "/api", storage: session.NewFileStorage(t.TempDir())}
}

// exec runs one command the way a fresh process would, sharing only the
// session directory with earlier runs.
func (c *cli) exec(args ...string) (string, string, error) {
	store := session.New(c.storage)
	d := dashboard.New(client.New(c.baseURL, store), store, dashboard.NewToaster(time.Minute), nil)
	defer d.Close()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), d, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.exec("help")
	require.NoError(t, err)
	assert.Contains(t, out, "usage: dashboard <command> [flags]")
	assert.Contains(t, out, "set-status")

	_, errOut, err := c.exec("frobnicate")
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, errOut, `unknown command "frobnicate"`)
}

func TestSessionSurvivesAcrossRuns(t *testing.T) {
	c := newCLI(t)

	_, errOut, err := c.exec("whoami")
	assert.True(t, apperrors.IsAuth(err))
	assert.Contains(t, errOut, "not logged in")

	out, _, err := c.exec("register", "-name", "Asha", "-email", "asha@example.com", "-password", "secret123", "-contact", "555-0100")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Registration successful")

	out, _, err = c.exec("login", "-email", "asha@example.com", "-password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Asha <asha@example.com> (User)")

	out, _, err = c.exec("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Menu: Dashboard | Profile | Appointments | Create Appointment | Apply for Doctor")

	_, _, err = c.exec("users")
	assert.True(t, apperrors.IsPermission(err))

	out, _, err = c.exec("apply", "-specialist", "Cardiology", "-fees", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "Application: Pending")
	assert.Contains(t, out, "under review")

	out, errOut, err = c.exec("apply", "-specialist", "Cardiology", "-fees", "45")
	assert.True(t, apperrors.IsState(err))
	assert.Contains(t, out, "[error] your doctor application is under review")
	assert.Empty(t, errOut)

	_, errOut, err = c.exec("book", "-doctor", "", "-at", "2031-05-04T09:30")
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, errOut, "All fields are required")

	out, _, err = c.exec("doctors")
	require.NoError(t, err)
	assert.Contains(t, out, "0 doctors")

	_, _, err = c.exec("logout")
	require.NoError(t, err)
	_, _, err = c.exec("appointments")
	assert.True(t, apperrors.IsAuth(err))
}
