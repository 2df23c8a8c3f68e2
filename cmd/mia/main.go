package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"mia/internal/cache"
	"mia/internal/cli"
	apphttp "mia/internal/http"
	applog "mia/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	caches := cache.NewManager(logger)
	caches.Register(app.Dashboard.Aggregator().Cache())
	caches.Register(app.Dashboard.Snapshot())
	// A zero TTL keeps entries until evicted; sweep once a minute anyway.
	sweep := cfg.CacheTTL
	if sweep <= 0 {
		sweep = time.Minute
	}
	caches.StartCleanup(sweep)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Dashboard: app.Dashboard,
		Ledger:    app.Ledger,
		Ready:     app.Ready,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := app.Close(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	go app.ConsumeEvents(ctx, logger.WithComponent(applog.ComponentAMQP))

	logger.Info("Starting mia server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
