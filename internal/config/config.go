package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                 string
	Origin               string
	Environment          string
	JWTSecret            string
	JWTExpirationMinutes int
	Storage              string
	UploadDir            string
	LogLevel             string
	Database             DatabaseConfig
	Admin                AdminConfig
	RateLimit            RateLimitConfig
	Client               ClientConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// AdminConfig describes the seeded administrator account. Seeding is
// skipped when Email is empty.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// RateLimitConfig bounds login and registration attempts per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ClientConfig holds settings for the dashboard client.
type ClientConfig struct {
	APIBaseURL     string
	SessionDir     string
	ToastDuration  time.Duration
	RequestTimeout time.Duration
}

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "healthcare"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	toastSeconds, err := strconv.Atoi(getEnv("TOAST_SECONDS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOAST_SECONDS: %w", err)
	}

	timeoutSeconds, err := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: %w", err)
	}

	storage := getEnv("STORAGE", StorageMySQL)
	if storage != StorageMySQL && storage != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE %q: want %s or %s", storage, StorageMySQL, StorageMemory)
	}

	port := getEnv("PORT", "7005")

	return &Config{
		Port:                 port,
		Origin:               getEnv("ORIGIN", "http://localhost:5173"),
		Environment:          getEnv("APP_ENV", "development"),
		JWTSecret:            getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTExpirationMinutes: jwtExpMinutes,
		Storage:              storage,
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Database:             dbConfig,
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
		Client: ClientConfig{
			APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:"+port+"/api"),
			SessionDir:     getEnv("SESSION_DIR", defaultSessionDir()),
			ToastDuration:  time.Duration(toastSeconds) * time.Second,
			RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}, nil
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "healthcare-dashboard"
	}
	return ".healthcare-dashboard"
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
