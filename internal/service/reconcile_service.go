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
)

// ReconcileService applies the operator-edited request queue to the ledger and
// writes an outcome marker back next to every row it handled.
type ReconcileService struct {
	cfg          *config.Config
	store        repository.RowStore
	reservations *ReservationService
	notifier     Notifier
	logger       *slog.Logger
}

func NewReconcileService(cfg *config.Config, store repository.RowStore, reservations *ReservationService, notifier Notifier, logger *slog.Logger) *ReconcileService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		cfg:          cfg,
		store:        store,
		reservations: reservations,
		notifier:     notifier,
		logger:       logger.With("component", "reconcile"),
	}
}

// ProcessRequests walks the queue top to bottom and returns how many actions
// succeeded. Only a failure to read the ledger or the queue aborts the pass; every
// row-level failure becomes that row's marker.
func (s *ReconcileService) ProcessRequests(ctx context.Context) (int, error) {
	if _, err := s.reservations.Refresh(ctx); err != nil {
		return 0, err
	}
	rows, err := s.store.ReadRows(ctx, repository.NewRange(s.cfg.RequestsSheet, 2, entities.RequestColumns))
	if err != nil {
		return 0, fmt.Errorf("reading request queue: %w", err)
	}

	processed := 0
	for i, cells := range rows {
		req := entities.RequestFromRow(i+2, cells)
		if req.IsBlank() || req.IsDone() {
			continue
		}

		outcome, r := s.handle(ctx, req)
		metrics.RecordOutcome(outcome.String())
		s.logger.Info("request processed", "row", req.Row, "action", req.Action.String(), "outcome", outcome.String())

		if err := s.store.UpdateCell(ctx, s.cfg.RequestsSheet, req.Row, entities.RequestMarkerColumn, outcome.Marker()); err != nil {
			s.logger.Error("writing request marker", "row", req.Row, "marker", outcome.Marker(), "error", err)
		}
		if !outcome.Succeeded() {
			continue
		}
		processed++

		kind := entities.NotificationBooked
		if outcome == entities.OutcomeCancelled {
			kind = entities.NotificationCancelled
		}
		if err := s.notifier.Notify(ctx, entities.Notification{Kind: kind, Reservation: r}); err != nil {
			s.logger.Warn("notifying customer", "row", req.Row, "error", err)
		}
	}
	return processed, nil
}

// handle never panics; anything unexpected in a single row is a data error.
func (s *ReconcileService) handle(ctx context.Context, req entities.Request) (outcome entities.Outcome, r db.Reservation) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("request row panicked", "row", req.Row, "panic", p)
			outcome, r = entities.OutcomeDataError, db.Reservation{}
		}
	}()

	if req.Action == entities.ActionUnknown {
		return entities.OutcomeUnknownAction, r
	}
	if strings.TrimSpace(req.Name) == "" {
		return entities.OutcomeMissingName, r
	}
	r, err := s.reservationFrom(req)
	if err != nil {
		s.logger.Warn("unusable request row", "row", req.Row, "error", err)
		return entities.OutcomeDataError, db.Reservation{}
	}

	switch req.Action {
	case entities.ActionBook:
		booked, err := s.reservations.Create(ctx, r)
		if err != nil {
			return outcomeFor(err), db.Reservation{}
		}
		return entities.OutcomeBooked, booked
	case entities.ActionCancel:
		cancelled, err := s.reservations.Cancel(ctx, r.Date, r.TimeSlot, r.Court, r.CustomerName)
		if err != nil {
			return outcomeFor(err), db.Reservation{}
		}
		return entities.OutcomeCancelled, cancelled
	}
	return entities.OutcomeUnknownAction, db.Reservation{}
}

func (s *ReconcileService) reservationFrom(req entities.Request) (db.Reservation, error) {
	return NewReservation(s.cfg, BookingInput{
		Date:  req.Date,
		Time:  req.Time,
		Court: req.Court,
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	})
}

// BookingInput is a reservation as an operator or API client types it.
type BookingInput struct {
	Date  string
	Time  string
	Court string
	Name  string
	Phone string
	Email string
	Notes string
}

// NewReservation parses and range-checks input into a Booked reservation. Errors
// wrap ErrMissingName or ErrDataError.
func NewReservation(cfg *config.Config, in BookingInput) (db.Reservation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return db.Reservation{}, apperr.ErrMissingName
	}
	date, err := utils.ParseDate(in.Date, cfg.Location())
	if err != nil {
		return db.Reservation{}, fmt.Errorf("%w: %v", apperr.ErrDataError, err)
	}
	slot, err := utils.ParseTimeSlot(in.Time)
	if err != nil {
		return db.Reservation{}, fmt.Errorf("%w: %v", apperr.ErrDataError, err)
	}
	court, err := utils.ParseCourt(in.Court)
	if err != nil {
		return db.Reservation{}, fmt.Errorf("%w: %v", apperr.ErrDataError, err)
	}
	if court < 1 || court > cfg.CourtCount {
		return db.Reservation{}, fmt.Errorf("%w: court %d outside 1..%d", apperr.ErrDataError, court, cfg.CourtCount)
	}
	if !cfg.IsOperatingSlot(slot) {
		return db.Reservation{}, fmt.Errorf("%w: slot %s outside opening hours", apperr.ErrDataError, slot)
	}
	return db.Reservation{
		Date:         date,
		TimeSlot:     slot,
		Court:        court,
		CustomerName: name,
		Phone:        orDefault(in.Phone),
		Email:        orDefault(in.Email),
		Status:       db.StatusBooked,
		Notes:        strings.TrimSpace(in.Notes),
	}, nil
}

func orDefault(v string) string {
	if strings.TrimSpace(v) == "" {
		return db.DefaultContact
	}
	return strings.TrimSpace(v)
}

func outcomeFor(err error) entities.Outcome {
	switch {
	case apperr.Is(err, apperr.ErrAlreadyReserved):
		return entities.OutcomeAlreadyReserved
	case apperr.Is(err, apperr.ErrNotFound):
		return entities.OutcomeNotFound
	case apperr.IsPersistence(err):
		return entities.OutcomePersistenceError
	}
	return entities.OutcomeDataError
}
