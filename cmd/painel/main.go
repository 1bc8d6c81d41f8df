package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"painel/internal/backend"
	"painel/internal/cache"
	"painel/internal/cli"
	apphttp "painel/internal/http"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	sessionSweep    = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, slog.LevelInfo)

	cfg := cli.MustLoadConfig(logger)
	logger = cli.SetupLogger(os.Stdout, cfg.SlogLevel())
	spec := cli.MustLoadKPISpec(logger, cfg)
	users := cli.MustLoadUsers(logger, cfg)

	m := metrics.New()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to create data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	source := backend.Instrument(res.Source, cfg.DataBackend, cfg.Layout(), cfg.FetchTimeout, m, logger)

	dash := services.NewDashboard(source, spec, services.DashboardConfig{
		SessionTTL: cfg.SessionTTL,
		SessionMax: cfg.SessionMax,
		Now:        time.Now,
	}, m, logger)

	caches := cache.NewManager(logger)
	caches.Register("sessions", dash.Sessions())
	caches.StartCleanup(sessionSweep)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Title:              cfg.DashboardTitle,
		Dashboard:          dash,
		Users:              users,
		SessionTTL:         cfg.SessionTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxyCIDRs(),
		Metrics:            m,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	})

	logger.Info("Starting painel server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"users", len(users),
		log.FieldOperation, log.OpStartup)
	if len(users) == 0 {
		logger.Warn("AUTH_USERS is empty: every login will be rejected")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
