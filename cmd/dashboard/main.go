// Command dashboard is a terminal front end for the healthcare appointment
// API. The session token is kept on disk between runs.
//
// Usage:
//
//	dashboard <command> [flags]
//
// Run "dashboard help" for the command list.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/dashboard"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/session"
)

func main() {
	// Load environment variables; a missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	store := session.New(session.NewFileStorage(cfg.Client.SessionDir), session.WithLogger(log))
	api := client.New(cfg.Client.APIBaseURL, store, client.WithTimeout(cfg.Client.RequestTimeout))
	d := dashboard.New(api, store, dashboard.NewToaster(cfg.Client.ToastDuration), log)
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, d, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		d.Close()
		stop()
		os.Exit(1)
	}
}

// run executes one command against d. Toasts go to stdout; errors that were
// not already shown as a toast go to stderr.
func run(ctx context.Context, d *dashboard.Dashboard, args []string, stdout, stderr io.Writer) error {
	var toastedError bool
	d.Toasts.OnShow(func(t dashboard.Toast) {
		if t.Kind == dashboard.ToastError {
			toastedError = true
		}
		fmt.Fprintf(stdout, "[%s] %s\n", t.Kind, t.Message)
	})

	err := dispatch(ctx, &app{d: d, out: stdout, errOut: stderr}, args)
	if err != nil && !toastedError {
		fmt.Fprintf(stderr, "error: %s\n", apperrors.MessageOf(err))
	}
	return err
}
