// Package cli provides common initialization utilities shared by the server
// (cmd/mia) and the command line tool (cmd/miactl).
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mia/internal/amqp"
	"mia/internal/backend"
	"mia/internal/config"
	"mia/internal/dashboard"
	"mia/internal/dates"
	applog "mia/internal/log"
	"mia/internal/services"
	"mia/internal/storage"
)

// SetupLogger initializes structured logging at the given level and makes it
// the process default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Component = applog.ComponentApp
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository at dbPath, applying migrations.
func InitSQLite(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		return nil, err
	}
	return repo, nil
}

// App is the object graph both binaries run on.
type App struct {
	Backend   backend.Backend
	Result    *backend.BackendResult
	Dashboard *dashboard.Service
	Ledger    *services.LedgerService
	Clock     dates.Clock
}

// NewApp creates the configured backend and wires the dashboard and the
// ledger service on top of it. Ledger writes invalidate the dashboard
// snapshot and, when AMQP is up, are published as events.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	clock := dates.NewClock(cfg.Location())
	dash, err := dashboard.New(dashboard.Sources{
		Transactions: res.Backend,
		MarketItems:  res.Backend,
		Debts:        res.Backend,
		Vehicles:     res.Backend,
		Profile:      res.Backend,
	}, clock, dashboard.Options{MemoSize: cfg.CacheSize, SnapshotTTL: cfg.CacheTTL}, logger)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if res.Events != nil {
		publisher = res.Events
	}
	ledger := services.NewLedgerService(res.Backend, res.Backend, publisher, logger)
	ledger.OnChange(dash.Invalidate)

	return &App{
		Backend:   res.Backend,
		Result:    res,
		Dashboard: dash,
		Ledger:    ledger,
		Clock:     clock,
	}, nil
}

// Close releases the backend and the broker connection.
func (a *App) Close() error {
	if a.Result == nil || a.Result.Cleanup == nil {
		return nil
	}
	return a.Result.Cleanup()
}

// Ready reports whether the backend answers. A backend still warming up is
// not ready yet.
func (a *App) Ready(ctx context.Context) error {
	if p, ok := a.Backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	if _, err := a.Backend.ListTransactions(ctx); err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	return nil
}

// ConsumeEvents invalidates the dashboard snapshot on every ledger event
// until ctx ends. It returns immediately when no broker is configured.
func (a *App) ConsumeEvents(ctx context.Context, logger *applog.Logger) {
	if a.Result == nil || a.Result.Events == nil {
		return
	}
	err := a.Result.Events.Consume(ctx, func(ev *amqp.LedgerEvent) error {
		logger.DebugContext(ctx, "Ledger event received",
			applog.FieldEntityKind, ev.Kind,
			applog.FieldEntityID, ev.ID)
		a.Dashboard.Invalidate()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		applog.NewStructuredLogger(logger).LogError(ctx, "Ledger event consumer stopped", err,
			applog.ComponentAMQP, applog.OpConsume, nil)
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
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
