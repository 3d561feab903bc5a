// Package cli provides common CLI initialization utilities.
// This package consolidates the bootstrap shared by cmd/expense-tracker,
// cmd/initdb and cmd/expense-export.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// SetupLogger initializes structured logging from the LOG_LEVEL and
// LOG_FORMAT settings and installs it as the default logger.
func SetupLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	if err != nil {
		logger.Warn("Unknown log level, falling back to info", "level", cfg.LogLevel)
	}
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads the environment, builds a logger from it and runs the
// given validation. It exits the process on validation failure.
func LoadConfig(validate func(*config.Config) error) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg)

	if validate != nil {
		if err := validate(cfg); err != nil {
			logger.Error("Configuration validation failed",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeConfiguration)
			os.Exit(1)
		}
	}
	return cfg, logger
}

// OpenStore opens the record store named by databaseURL and applies pending
// migrations. It exits the process on failure.
func OpenStore(ctx context.Context, logger *log.Logger, databaseURL string) *storage.SQLRepository {
	repo, err := storage.Open(ctx, databaseURL)
	if err != nil {
		logger.Error("Failed to open record store",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		os.Exit(1)
	}
	logger.WithComponent(log.ComponentStorage).Info("Record store ready", "driver", repo.Dialect().Name)
	return repo
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}

// Usage prints a one-line usage string to stderr.
func Usage(name, args string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "usage: %s %s\n", name, args)
	}
}
