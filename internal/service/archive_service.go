package service

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/metrics"
	"courtbooking/internal/repository"
	"courtbooking/internal/utils"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ArchiveService moves rows dated before today out of the ledger and the request
// queue into their archive tabs. The rewrite runs under the reservation store's
// ledger gate, so no booking or cancellation lands between the read and the clear.
type ArchiveService struct {
	cfg          *config.Config
	store        repository.RowStore
	reservations *ReservationService
	logger       *slog.Logger
	now          func() time.Time
}

func NewArchiveService(cfg *config.Config, store repository.RowStore, reservations *ReservationService, logger *slog.Logger) *ArchiveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveService{
		cfg:          cfg,
		store:        store,
		reservations: reservations,
		logger:       logger.With("component", "archive"),
		now:          time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ArchiveService) WithClock(now func() time.Time) *ArchiveService {
	s.now = now
	return s
}

// ArchiveOldData returns how many rows were archived across both live tabs.
func (s *ArchiveService) ArchiveOldData(ctx context.Context) (int, error) {
	loc := s.cfg.Location()
	today := utils.StartOfDay(s.now(), loc)

	var total int
	err := s.reservations.withLedger(func() error {
		ledger, err := s.archiveTab(ctx, s.cfg.BookingsSheet, s.cfg.BookingsArchiveSheet, db.LedgerColumns, func(rows [][]string) ([][]string, [][]string) {
			return PartitionLedger(rows, today)
		})
		if err != nil {
			return err
		}
		total = ledger
		if ledger > 0 {
			// cached row positions moved with the rewrite
			if err := s.reservations.refreshLocked(ctx); err != nil {
				s.logger.Warn("cache not refreshed after archive", "error", err)
			}
		}

		requests, err := s.archiveTab(ctx, s.cfg.RequestsSheet, s.cfg.RequestsArchiveSheet, entities.RequestColumns, func(rows [][]string) ([][]string, [][]string) {
			return PartitionRequests(rows, today, loc)
		})
		total += requests
		return err
	})
	return total, err
}

func (s *ArchiveService) archiveTab(ctx context.Context, live, archive string, columns int, partition func([][]string) ([][]string, [][]string)) (int, error) {
	rows, err := s.store.ReadRows(ctx, repository.NewRange(live, 2, columns))
	if err != nil {
		return 0, apperr.NewPersistenceError("read "+live, err)
	}
	archived, retained := partition(rows)
	if len(archived) == 0 {
		return 0, nil
	}

	if err := s.appendArchive(ctx, repository.NewRange(archive, 1, columns), archived); err != nil {
		return 0, err
	}

	// The archive holds a copy now; only then is the live tab rewritten.
	if len(retained) > 0 {
		if err := s.store.WriteRows(ctx, repository.NewRange(live, 2, columns), padRows(retained, columns)); err != nil {
			return 0, apperr.NewPersistenceError("rewrite "+live, err)
		}
	}
	if err := s.store.ClearRows(ctx, repository.NewRange(live, 2+len(retained), columns)); err != nil {
		return 0, apperr.NewPersistenceError("trim "+live, err)
	}

	metrics.RecordArchived(live, len(archived))
	s.logger.Info("archived rows", "tab", live, "archive", archive, "archived", len(archived), "retained", len(retained))
	return len(archived), nil
}

// appendArchive tries one bulk append and falls back to row by row.
func (s *ArchiveService) appendArchive(ctx context.Context, rng repository.Range, rows [][]string) error {
	err := s.store.AppendRows(ctx, rng, rows)
	if err == nil {
		return nil
	}
	s.logger.Warn("bulk archive append failed, appending row by row", "tab", rng.Tab, "error", err)
	for i, row := range rows {
		if _, err := s.store.AppendRow(ctx, rng, row); err != nil {
			return apperr.NewPersistenceError(fmt.Sprintf("archive row %d of %d to %s", i+1, len(rows), rng.Tab), err)
		}
	}
	return nil
}

// PartitionLedger splits ledger rows into those dated before today and the rest.
// Rows whose date cannot be read stay live. Order is preserved on both sides.
func PartitionLedger(rows [][]string, today time.Time) (archived, retained [][]string) {
	return partitionByDate(rows, 0, today, func(cell string) (time.Time, error) {
		return time.ParseInLocation(db.DateLayout, cell, today.Location())
	})
}

// PartitionRequests splits queue rows by their date column, whatever their marker
// says. Dates are read as leniently as the reconciler reads them.
func PartitionRequests(rows [][]string, today time.Time, loc *time.Location) (archived, retained [][]string) {
	return partitionByDate(rows, 1, today, func(cell string) (time.Time, error) {
		return utils.ParseDate(cell, loc)
	})
}

func partitionByDate(rows [][]string, dateCol int, today time.Time, parse func(string) (time.Time, error)) (archived, retained [][]string) {
	cutoff := today.Format(db.DateLayout)
	for _, row := range rows {
		if len(row) > dateCol {
			if d, err := parse(strings.TrimSpace(row[dateCol])); err == nil && d.Format(db.DateLayout) < cutoff {
				archived = append(archived, row)
				continue
			}
		}
		retained = append(retained, row)
	}
	return archived, retained
}

// padRows widens every row to columns so an overwrite leaves no stale cells behind.
func padRows(rows [][]string, columns int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, max(columns, len(row)))
		copy(padded, row)
		out[i] = padded
	}
	return out
}
