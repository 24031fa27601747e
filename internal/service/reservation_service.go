package service

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/repository"
	"courtbooking/internal/utils"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReservationService owns the in-memory copy of the ledger. The cache is only ever
// replaced wholesale by Refresh; Create and Cancel patch it after the store accepted
// the change.
//
// gate serialises every read-then-write of the ledger in this process, the archive
// rewrite included. mu only guards the cache.
type ReservationService struct {
	cfg    *config.Config
	store  repository.RowStore
	logger *slog.Logger

	gate  sync.Mutex
	mu    sync.RWMutex
	cache []db.Reservation
}

func NewReservationService(cfg *config.Config, store repository.RowStore, logger *slog.Logger) *ReservationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationService{cfg: cfg, store: store, logger: logger.With("component", "reservations")}
}

func (s *ReservationService) ledgerRange() repository.Range {
	return repository.NewRange(s.cfg.BookingsSheet, 2, db.LedgerColumns)
}

// Refresh reloads the whole cache from the ledger. Rows that cannot be decoded are
// logged and skipped.
func (s *ReservationService) Refresh(ctx context.Context) ([]db.Reservation, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return s.Reservations(), nil
}

// refreshLocked must be called with gate held, so no mutation lands between the
// read and the swap.
func (s *ReservationService) refreshLocked(ctx context.Context) error {
	rows, err := s.store.ReadRows(ctx, s.ledgerRange())
	if err != nil {
		return fmt.Errorf("refreshing ledger: %w", err)
	}
	fresh := make([]db.Reservation, 0, len(rows))
	for i, row := range rows {
		position := i + 2
		if len(row) == 0 || row[0] == "" {
			continue
		}
		r, err := db.FromRow(row)
		if err != nil {
			s.logger.Warn("skipping ledger row", "row", position, "error", err)
			continue
		}
		r.Row = position
		fresh = append(fresh, r)
	}

	s.mu.Lock()
	s.cache = fresh
	s.mu.Unlock()
	return nil
}

// withLedger runs fn while holding the ledger gate. Callers that rewrite the ledger
// in place use it so no booking or cancellation interleaves with the rewrite.
func (s *ReservationService) withLedger(fn func() error) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	return fn()
}

// Reservations returns a copy of the cached ledger.
func (s *ReservationService) Reservations() []db.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]db.Reservation(nil), s.cache...)
}

// ForDate lists cached reservations on a calendar day.
func (s *ReservationService) ForDate(date time.Time) []db.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.Reservation
	for _, r := range s.cache {
		if utils.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out
}

// IsAvailable reports whether no Booked reservation holds the slot.
func (s *ReservationService) IsAvailable(date time.Time, timeSlot string, court int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAvailableLocked(db.NewSlotKey(date, timeSlot, court))
}

func (s *ReservationService) isAvailableLocked(key db.SlotKey) bool {
	for _, r := range s.cache {
		if r.IsBooked() && r.Key() == key {
			return false
		}
	}
	return true
}

// Create books the slot and returns the reservation as stored, with its ledger row
// and creation time.
func (s *ReservationService) Create(ctx context.Context, r db.Reservation) (db.Reservation, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	if !s.IsAvailable(r.Date, r.TimeSlot, r.Court) {
		return db.Reservation{}, fmt.Errorf("%s: %w", r.Key(), apperr.ErrAlreadyReserved)
	}
	r.Status = db.StatusBooked
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().In(s.cfg.Location()).Truncate(time.Second)
	}
	row, err := s.store.AppendRow(ctx, repository.NewRange(s.cfg.BookingsSheet, 1, db.LedgerColumns), r.ToRow())
	if err != nil {
		return db.Reservation{}, apperr.NewPersistenceError("append reservation", err)
	}
	r.Row = row

	s.mu.Lock()
	s.cache = append(s.cache, r)
	s.mu.Unlock()
	s.logger.Info("reservation booked", "slot", r.Key().String(), "customer", r.CustomerName, "row", row)
	return r, nil
}

// Cancel releases the Booked reservation on the slot held by name. The cache is
// refreshed first so the decision is never taken on stale data.
func (s *ReservationService) Cancel(ctx context.Context, date time.Time, timeSlot string, court int, name string) (db.Reservation, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return db.Reservation{}, apperr.NewPersistenceError("refresh before cancel", err)
	}

	key := db.NewSlotKey(date, timeSlot, court)
	target := utils.NormalizeName(name)
	for _, r := range s.Reservations() {
		if !r.IsBooked() || r.Key() != key || utils.NormalizeName(r.CustomerName) != target {
			continue
		}
		if err := s.store.UpdateCell(ctx, s.cfg.BookingsSheet, r.Row, db.StatusColumn, db.StatusCancelled.Text()); err != nil {
			return db.Reservation{}, apperr.NewPersistenceError("cancel reservation", err)
		}
		r.Status = db.StatusCancelled
		s.mu.Lock()
		for i := range s.cache {
			if s.cache[i].Row == r.Row {
				s.cache[i].Status = db.StatusCancelled
			}
		}
		s.mu.Unlock()
		s.logger.Info("reservation cancelled", "slot", key.String(), "customer", r.CustomerName, "row", r.Row)
		return r, nil
	}
	return db.Reservation{}, fmt.Errorf("%s for %q: %w", key, name, apperr.ErrNotFound)
}

// FindConflicts reports every slot key held by more than one Booked reservation,
// pairing the first occupant with each later one. Conflicts are never resolved here.
func (s *ReservationService) FindConflicts() []entities.Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conflicts []entities.Conflict
	first := make(map[db.SlotKey]string)
	for _, r := range s.cache {
		if !r.IsBooked() {
			continue
		}
		key := r.Key()
		if owner, ok := first[key]; ok {
			conflicts = append(conflicts, entities.Conflict{Key: key.String(), First: owner, Second: r.CustomerName})
			continue
		}
		first[key] = r.CustomerName
	}
	return conflicts
}
