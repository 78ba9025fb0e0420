package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/platform/metrics"
	"github.com/Holography7/listkeeper/internal/platform/postgres"
	"github.com/Holography7/listkeeper/internal/service/access"
	"github.com/Holography7/listkeeper/internal/service/auth"
	"github.com/Holography7/listkeeper/internal/service/expiry"
	"github.com/Holography7/listkeeper/internal/service/notify"
	"github.com/Holography7/listkeeper/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	identityStore store.IdentityStore
	listStore     store.ListStore
	jobStore      job.Store

	// Service interfaces
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	resolver         *access.Resolver
	expiryScheduler  *expiry.Scheduler
	notifier         *notify.Notifier
	deliverer        *notify.Deliverer

	// Observability
	metrics *metrics.Collector

	// Background job handling
	jobRunner *job.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewCollector(),
	}

	// Initialize token service
	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"access_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	// Initialize password handling
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.identityStore = postgres.NewIdentityStore(db, hasher, logger)
	app.listStore = postgres.NewListStore(db, logger)
	app.jobStore = postgres.NewJobStore(db, logger)

	// Initialize job runner
	app.jobRunner = job.NewRunner(app.jobStore, job.RunnerConfig{
		WorkerCount:  cfg.Job.WorkerCount,
		QueueSize:    cfg.Job.QueueSize,
		PollInterval: time.Duration(cfg.Job.PollIntervalSeconds) * time.Second,
		StuckJobAge:  time.Duration(cfg.Job.StuckAgeMinutes) * time.Minute,
	}, logger)

	// Initialize expiry scheduling
	app.expiryScheduler = expiry.NewScheduler(
		app.identityStore,
		app.jobRunner,
		cfg.Expiry,
		app.metrics,
		logger,
	)

	// Initialize deletion notifications
	app.notifier = notify.NewNotifier(app.identityStore, app.jobRunner, app.metrics, logger)
	app.deliverer = notify.NewDeliverer(cfg.Relay, cfg.Notify, app.metrics, logger)

	// Register job executors before the runner starts pulling work
	app.jobRunner.Register(expiry.JobKindAccountExpiry, app.expiryScheduler.Executor())
	app.jobRunner.Register(notify.JobKindListDeletedNotice, app.deliverer.Executor())

	if err := app.jobRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	// Initialize the access resolver last; it ties tokens, identities and
	// lists together and drives expiry refresh on authenticated traffic.
	app.resolver = access.NewResolver(
		app.tokenService,
		app.identityStore,
		app.listStore,
		app.expiryScheduler,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
