package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/models"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/routes"
)

func main() {
	// Load environment variables; a missing .env file is fine.
	_ = godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}

	if err := seedAdmin(context.Background(), store.Users, cfg.Admin); err != nil {
		log.WithError(err).Fatal("failed to seed admin account")
	}

	router := routes.NewRouter(store, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).WithField("storage", cfg.Storage).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server stopped")
}

func openStore(cfg *config.Config) (*repository.Store, error) {
	if cfg.Storage == config.StorageMemory {
		return repository.NewMemoryStore(), nil
	}

	level := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN, LogLevel: level})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return repository.NewGormStore(db), nil
}

// seedAdmin creates the configured administrator once. Registration can
// never produce an Admin, so this is the only way one comes to exist.
func seedAdmin(ctx context.Context, users repository.UserRepository, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}
	if _, err := users.FindByEmail(ctx, admin.Email); err == nil {
		return nil
	} else if !apperrors.IsNotFound(err) {
		return err
	}
	if admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	user := &models.User{Name: admin.Name, Email: admin.Email, Role: domain.RoleAdmin}
	if err := user.SetPassword(admin.Password); err != nil {
		return err
	}
	return users.Create(ctx, user)
}
