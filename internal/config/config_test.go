package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "http://localhost:9000/api", cfg.Client.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.ToastDuration)
	assert.Equal(t, 1440, cfg.JWTExpirationMinutes)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/healthcare")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "clinic")
	t.Setenv("TOAST_SECONDS", "5")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("API_BASE_URL", "https://api.example.com/api")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Contains(t, cfg.Database.DSN, "@tcp(db:3306)/clinic")
	assert.Equal(t, 5*time.Second, cfg.Client.ToastDuration)
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
	assert.Equal(t, "https://api.example.com/api", cfg.Client.APIBaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINUTES", "soon")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_EXPIRATION_MINUTES")
}

func TestLoadConfig_InvalidStorage(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "STORAGE")
}
