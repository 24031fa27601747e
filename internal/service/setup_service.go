package service

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/repository"
	"log/slog"
)

var (
	LedgerHeader = []string{"Date", "Time Slot", "Court", "Customer Name", "Phone", "Email", "Status", "Created At", "Notes"}
	QueueHeader  = []string{"ACTION", "Date", "Time", "Court", "Name", "Phone", "Email", "Notes", "BOOKING_STATUS"}
)

// SetupService makes sure every tab exists and carries its header row.
type SetupService struct {
	cfg    *config.Config
	store  repository.RowStore
	logger *slog.Logger
}

func NewSetupService(cfg *config.Config, store repository.RowStore, logger *slog.Logger) *SetupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetupService{cfg: cfg, store: store, logger: logger.With("component", "setup")}
}

// InitWorkspace is idempotent. Live tabs always get their header rewritten; an
// archive tab only gets one while it is still empty, since appends may already
// have landed on row 1.
func (s *SetupService) InitWorkspace(ctx context.Context) error {
	if err := s.store.EnsureTabsExist(ctx, s.cfg.Tabs()); err != nil {
		return apperr.NewPersistenceError("ensure tabs", err)
	}

	live := []struct {
		tab    string
		header []string
	}{
		{s.cfg.BookingsSheet, LedgerHeader},
		{s.cfg.RequestsSheet, QueueHeader},
	}
	for _, t := range live {
		if err := s.store.WriteRows(ctx, repository.NewRange(t.tab, 1, len(t.header)), [][]string{t.header}); err != nil {
			return apperr.NewPersistenceError("write header of "+t.tab, err)
		}
	}

	archives := []struct {
		tab    string
		header []string
	}{
		{s.cfg.BookingsArchiveSheet, LedgerHeader},
		{s.cfg.RequestsArchiveSheet, QueueHeader},
	}
	for _, t := range archives {
		rows, err := s.store.ReadRows(ctx, repository.NewRange(t.tab, 1, len(t.header)))
		if err != nil {
			return apperr.NewPersistenceError("read "+t.tab, err)
		}
		if len(rows) > 0 {
			continue
		}
		if err := s.store.WriteRows(ctx, repository.NewRange(t.tab, 1, len(t.header)), [][]string{t.header}); err != nil {
			return apperr.NewPersistenceError("write header of "+t.tab, err)
		}
	}

	s.logger.Info("workspace ready", "tabs", len(s.cfg.Tabs()), "ledger_columns", db.LedgerColumns, "queue_columns", entities.RequestColumns)
	return nil
}
