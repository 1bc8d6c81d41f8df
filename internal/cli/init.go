// Package cli provides common initialization shared by cmd/painel and
// cmd/painel-cli.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"painel/internal/config"
	"painel/internal/core"
	"painel/internal/log"
)

// SetupLogger initializes structured logging at the given level, writing
// text records to w, and installs it as the default logger.
func SetupLogger(w io.Writer, level slog.Level) *log.Logger {
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadAndValidateConfig for binaries: it exits the
// process on validation failure.
func MustLoadConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// MustLoadKPISpec loads the card table named by the configuration, or
// exits the process.
func MustLoadKPISpec(logger *log.Logger, cfg *config.Config) core.KPISpec {
	spec, err := config.LoadKPISpec(cfg.KPIConfigFile)
	if err != nil {
		logger.Error("KPI configuration invalid", "error", err, "path", cfg.KPIConfigFile)
		os.Exit(1)
	}
	return spec
}

// MustLoadUsers parses the login allow-list, or exits the process.
func MustLoadUsers(logger *log.Logger, cfg *config.Config) config.Users {
	users, err := config.ParseUsers(cfg.AuthUsers)
	if err != nil {
		logger.Error("AUTH_USERS invalid", "error", err, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return users
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
