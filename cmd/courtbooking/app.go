package main

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/events"
	"courtbooking/internal/repository"
	"courtbooking/internal/runlock"
	"courtbooking/internal/service"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// App holds the wired services for one process.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Store        repository.RowStore
	Reservations *service.ReservationService
	Reconcile    *service.ReconcileService
	Archive      *service.ArchiveService
	Availability *service.AvailabilityService
	Setup        *service.SetupService
	Jobs         *service.JobService
	Admin        *service.AdminService
	AdminAuth    service.AdminAuthService
	Notifier     service.Notifier

	closers []func() error
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	notifiers := service.MultiNotifier{}
	if cfg.NotificationsEnabled() {
		notifiers = append(notifiers, service.NewMessageNotifierFromConfig(cfg, logger))
	}
	if cfg.EventsEnabled() {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		app.closers = append(app.closers, pub.Close)
		notifiers = append(notifiers, pub)
	}
	app.Notifier = notifiers

	var locker runlock.Locker = runlock.NopLocker{}
	if cfg.RedisAddr != "" {
		rdb := runlock.NewRedisClient(cfg.RedisAddr)
		app.closers = append(app.closers, rdb.Close)
		locker = runlock.NewRedisLocker(rdb, workspaceName(cfg), cfg.RunLockTTL)
	}

	app.Reservations = service.NewReservationService(cfg, store, logger)
	app.Reconcile = service.NewReconcileService(cfg, store, app.Reservations, app.Notifier, logger)
	app.Archive = service.NewArchiveService(cfg, store, app.Reservations, logger)
	app.Availability = service.NewAvailabilityService(cfg, store, app.Reservations, logger)
	app.Setup = service.NewSetupService(cfg, store, logger)
	app.Jobs = service.NewJobService(app.Setup, app.Reservations, app.Reconcile, app.Archive, app.Availability, locker, logger)
	app.Admin = service.NewAdminService(app.Reservations, app.Jobs)
	app.AdminAuth = service.NewAdminAuthService(cfg)
	return app, nil
}

func (a *App) openStore(ctx context.Context) (repository.RowStore, error) {
	cfg := a.Config
	switch cfg.Backend {
	case config.BackendSheets:
		sheets, err := repository.NewSheetsStore(ctx, cfg.GoogleCredentialsPath, cfg.SheetID)
		if err != nil {
			return nil, err
		}
		return repository.NewRetryStore(sheets, repository.IsRetryableSheetsError, cfg.StoreMaxRetries,
			repository.WithRateLimit(cfg.SheetsRequestsPerMinute),
			repository.WithLogger(a.Logger),
		), nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open DB: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return repository.NewRetryStore(pg, repository.IsRetryablePostgresError, cfg.StoreMaxRetries,
			repository.WithLogger(a.Logger),
		), nil
	case config.BackendMemory:
		a.Logger.Warn("using the in-memory store, nothing will be persisted")
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("closing resource", "error", err)
		}
	}
}

func workspaceName(cfg *config.Config) string {
	if cfg.Backend == config.BackendSheets {
		return cfg.SheetID
	}
	return cfg.Backend
}
