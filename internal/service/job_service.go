package service

import (
	"context"
	"courtbooking/internal/entities"
	"courtbooking/internal/metrics"
	"courtbooking/internal/runlock"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobService drives a full sync pass: setup, queue, archive, dashboard, conflicts.
// Passes never overlap within a process; locker extends that across processes.
type JobService struct {
	running sync.Mutex

	setup        *SetupService
	reservations *ReservationService
	reconcile    *ReconcileService
	archive      *ArchiveService
	availability *AvailabilityService
	locker       runlock.Locker
	logger       *slog.Logger
}

func NewJobService(setup *SetupService, reservations *ReservationService, reconcile *ReconcileService, archive *ArchiveService, availability *AvailabilityService, locker runlock.Locker, logger *slog.Logger) *JobService {
	if locker == nil {
		locker = runlock.NopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		setup:        setup,
		reservations: reservations,
		reconcile:    reconcile,
		archive:      archive,
		availability: availability,
		locker:       locker,
		logger:       logger.With("component", "job"),
	}
}

// RunSync executes one pass. A failing setup step is logged and the pass goes on;
// any later failure ends the pass with an error.
func (s *JobService) RunSync(ctx context.Context) (report entities.SyncReport, err error) {
	start := time.Now()
	report.RunID = uuid.NewString()
	logger := s.logger.With("run_id", report.RunID)

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, runlock.ErrLocked):
			status = "locked"
		case err != nil:
			status = "error"
		}
		report.Duration = time.Since(start)
		report.FinishedAt = time.Now()
		metrics.ObserveSync(status, report.Duration)
	}()

	unlock, err := s.lock(ctx, logger)
	if err != nil {
		return report, err
	}
	defer unlock()

	logger.Info("sync pass started")
	if err := s.setup.InitWorkspace(ctx); err != nil {
		logger.Warn("workspace setup incomplete", "error", err)
	}

	report.Processed, err = s.reconcile.ProcessRequests(ctx)
	if err != nil {
		return report, fmt.Errorf("processing requests: %w", err)
	}
	if _, err = s.reservations.Refresh(ctx); err != nil {
		return report, fmt.Errorf("refreshing ledger: %w", err)
	}
	report.Archived, err = s.archive.ArchiveOldData(ctx)
	if err != nil {
		return report, fmt.Errorf("archiving: %w", err)
	}

	report.Conflicts, err = s.Update(ctx)
	if err != nil {
		return report, err
	}
	logger.Info("sync pass finished", "processed", report.Processed, "archived", report.Archived, "conflicts", len(report.Conflicts))
	return report, nil
}

// Archive runs the archive step alone. It shares the pass guard with RunSync.
func (s *JobService) Archive(ctx context.Context) (int, error) {
	unlock, err := s.lock(ctx, s.logger)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.archive.ArchiveOldData(ctx)
}

func (s *JobService) lock(ctx context.Context, logger *slog.Logger) (func(), error) {
	if !s.running.TryLock() {
		return nil, runlock.ErrLocked
	}
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		s.running.Unlock()
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("releasing run lock", "error", err)
		}
		s.running.Unlock()
	}, nil
}

// Update redraws the dashboard and reports ledger conflicts. Conflicts are never
// resolved automatically.
func (s *JobService) Update(ctx context.Context) ([]entities.Conflict, error) {
	if err := s.availability.UpdateDashboard(ctx); err != nil {
		return nil, fmt.Errorf("updating dashboard: %w", err)
	}
	conflicts := s.reservations.FindConflicts()
	metrics.SetConflicts(len(conflicts))
	for _, c := range conflicts {
		s.logger.Warn("ledger conflict", "key", c.Key, "first", c.First, "second", c.Second)
	}
	return conflicts, nil
}

// Schedule registers RunSync on c. A failed pass is logged and retried at the
// next tick.
func (s *JobService) Schedule(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		report, err := s.RunSync(ctx)
		switch {
		case errors.Is(err, runlock.ErrLocked):
			s.logger.Info("sync pass skipped, lock held elsewhere")
		case err != nil:
			s.logger.Error("scheduled sync failed", "run_id", report.RunID, "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("scheduling sync %q: %w", spec, err)
	}
	return id, nil
}
