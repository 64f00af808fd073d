package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *repository.Store, *config.Config) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret"}
	store := repository.NewMemoryStore()

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg, store.Users), func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.String(http.StatusOK, actor.ID+":"+string(actor.Role))
	})
	r.GET("/admin", AuthMiddleware(cfg, store.Users), RoleAuthMiddleware(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, store, cfg
}

func tokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user, cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func get(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_RejectsMissingAndMalformed(t *testing.T) {
	r, _, _ := setupAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer not-a-jwt").Code)
}

func TestAuthMiddleware_UsesStoredRole(t *testing.T) {
	r, store, cfg := setupAuthRouter(t)

	user := &models.User{Name: "meera", Email: "meera@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(context.Background(), user))
	token := tokenFor(t, cfg, user)

	user.Role = domain.RoleDoctor
	require.NoError(t, store.Users.Update(context.Background(), user))

	w := get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID+":Doctor", w.Body.String())
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	r, _, cfg := setupAuthRouter(t)

	ghost := &models.User{BaseModel: models.BaseModel{ID: "ghost"}, Role: domain.RoleAdmin}
	w := get(r, "/me", "Bearer "+tokenFor(t, cfg, ghost))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	r, store, cfg := setupAuthRouter(t)

	user := &models.User{Name: "asha", Email: "asha@example.com", Role: domain.RoleUser}
	admin := &models.User{Name: "root", Email: "root@example.com", Role: domain.RoleAdmin}
	require.NoError(t, store.Users.Create(context.Background(), user))
	require.NoError(t, store.Users.Create(context.Background(), admin))

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", "Bearer "+tokenFor(t, cfg, user)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", "Bearer "+tokenFor(t, cfg, admin)).Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 1)
	clock := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	assert.True(t, limiter.limiter("10.0.0.1").Allow())
	assert.False(t, limiter.limiter("10.0.0.1").Allow())

	clock = clock.Add(DefaultLimiterIdle / 2)
	limiter.limiter("10.0.0.2")
	assert.Len(t, limiter.visitors, 2)

	clock = clock.Add(DefaultLimiterIdle / 2)
	limiter.limiter("10.0.0.3")
	assert.Len(t, limiter.visitors, 2)
	assert.NotContains(t, limiter.visitors, "10.0.0.1")

	// A swept client starts over with a full bucket.
	assert.True(t, limiter.limiter("10.0.0.1").Allow())
}

func TestMetrics(t *testing.T) {
	metrics := NewMetrics()
	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", metrics.Handler())

	get(r, "/health", "")
	w := get(r, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`))
}
