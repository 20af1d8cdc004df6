package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapsolve/snapsolve/internal/api"
	"github.com/snapsolve/snapsolve/internal/app/entitlement"
	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/app/reminder"
	"github.com/snapsolve/snapsolve/internal/health"
	"github.com/snapsolve/snapsolve/internal/infra/sqlite"
)

// Daemon is the SnapSolve composition root. It wires together all services.
type Daemon struct {
	Config      Config
	Logger      *slog.Logger
	DB          *sqlite.DB
	Clock       progression.SystemClock
	Progression *progression.Service
	Reminders   *reminder.Service
	Purchases   *entitlement.Service
	Server      *api.Server
	Health      *health.Checker
	cancel      context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration, storing data
// under Home().
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Logging, os.Stderr)

	db, err := sqlite.Open(snapsolveHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	clock := progression.NewSystemClock(loc)
	reminders, err := reminder.NewServiceWithPolicy(db, clock, cfg.ReminderPolicy(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init reminders: %w", err)
	}

	prog, err := progression.NewService(progression.Options{
		Config: progression.Config{
			DailyBase:      cfg.Quota.DailyBase,
			PointsPerSolve: cfg.Points.PerSolve,
		},
		Clock:     clock,
		KV:        db,
		Reminders: reminders,
		Logger:    logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init progression: %w", err)
	}

	purchases := entitlement.NewService(db, prog, clock, logger)

	checker := health.NewChecker(db, snapsolveHome(), prog)

	srv := api.NewServer(prog, purchases, logger)
	srv.SetReminders(reminders)
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:      cfg,
		Logger:      logger.With("component", "daemon"),
		DB:          db,
		Clock:       clock,
		Progression: prog,
		Reminders:   reminders,
		Purchases:   purchases,
		Server:      srv,
		Health:      checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health loop also retries failed snapshot writes.
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("SnapSolve serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	d.Logger.Info("listening", "addr", addr, "timezone", d.Clock.Location.String())

	err := httpServer.ListenAndServe()
	cancel()
	d.Close()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close flushes pending state and shuts down all daemon resources.
// Safe to call more than once.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Progression != nil {
		if err := d.Progression.Flush(); err != nil {
			d.Logger.Error("final flush failed", "error", err)
		}
	}
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
}
