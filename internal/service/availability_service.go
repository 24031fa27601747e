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
	"time"
)

const (
	dashboardTitle      = "📅 Court Availability Dashboard - Updated: %s (%s)"
	dashboardCornerCell = "Time Slot & Court"
	dashboardDayLayout  = "Mon 02/01"
	dashboardTimeLayout = "2006-01-02 15:04"
)

// AvailabilityService projects the ledger onto a time slot x date grid.
type AvailabilityService struct {
	cfg          *config.Config
	store        repository.RowStore
	reservations *ReservationService
	logger       *slog.Logger
	now          func() time.Time
}

func NewAvailabilityService(cfg *config.Config, store repository.RowStore, reservations *ReservationService, logger *slog.Logger) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{
		cfg:          cfg,
		store:        store,
		reservations: reservations,
		logger:       logger.With("component", "availability"),
		now:          time.Now,
	}
}

func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// Grid refreshes the ledger and builds one row per (slot, court) for the next
// DashboardDays days, starting today in the reference zone.
func (s *AvailabilityService) Grid(ctx context.Context) (entities.AvailabilityGrid, error) {
	reservations, err := s.reservations.Refresh(ctx)
	if err != nil {
		return entities.AvailabilityGrid{}, err
	}

	loc := s.cfg.Location()
	now := s.now().In(loc)
	today := utils.StartOfDay(now, loc)

	occupant := make(map[db.SlotKey]string, len(reservations))
	for _, r := range reservations {
		if !r.IsBooked() {
			continue
		}
		if _, taken := occupant[r.Key()]; !taken {
			occupant[r.Key()] = r.CustomerName
		}
	}

	grid := entities.AvailabilityGrid{GeneratedAt: now}
	for i := 0; i < s.cfg.DashboardDays; i++ {
		grid.Dates = append(grid.Dates, today.AddDate(0, 0, i))
	}
	for _, slot := range s.cfg.TimeSlots() {
		for _, court := range s.cfg.Courts() {
			row := entities.GridRow{Court: court, TimeSlot: slot}
			for _, d := range grid.Dates {
				row.Cells = append(row.Cells, entities.GridCell{
					Date:     d,
					Occupant: occupant[db.NewSlotKey(d, slot, court)],
				})
			}
			grid.Rows = append(grid.Rows, row)
		}
	}
	return grid, nil
}

// AvailableSlots lists the free slots of one day, optionally for a single court
// (court <= 0 means every court).
func (s *AvailabilityService) AvailableSlots(ctx context.Context, date time.Time, court int) ([]entities.AvailableSlot, error) {
	if _, err := s.reservations.Refresh(ctx); err != nil {
		return nil, err
	}
	if court > s.cfg.CourtCount {
		return nil, fmt.Errorf("court %d outside 1..%d: %w", court, s.cfg.CourtCount, apperr.ErrDataError)
	}
	courts := s.cfg.Courts()
	if court > 0 {
		courts = []int{court}
	}

	var free []entities.AvailableSlot
	for _, slot := range s.cfg.TimeSlots() {
		for _, c := range courts {
			if s.reservations.IsAvailable(date, slot, c) {
				free = append(free, entities.AvailableSlot{Date: date.Format(db.DateLayout), TimeSlot: slot, Court: c})
			}
		}
	}
	return free, nil
}

// UpdateDashboard rewrites the dashboard tab from scratch.
func (s *AvailabilityService) UpdateDashboard(ctx context.Context) error {
	grid, err := s.Grid(ctx)
	if err != nil {
		return err
	}
	table := RenderDashboard(grid, s.cfg.TimeZone)

	rng := repository.NewRange(s.cfg.DashboardSheet, 1, len(table[1]))
	if err := s.store.ClearRows(ctx, rng); err != nil {
		return apperr.NewPersistenceError("clear dashboard", err)
	}
	if err := s.store.WriteRows(ctx, rng, table); err != nil {
		return apperr.NewPersistenceError("write dashboard", err)
	}
	s.logger.Info("dashboard updated", "rows", len(grid.Rows), "days", len(grid.Dates))
	return nil
}

// RenderDashboard lays the grid out as the dashboard tab shows it: a title row, a
// header row of days and one row per slot and court.
func RenderDashboard(grid entities.AvailabilityGrid, zone string) [][]string {
	title := fmt.Sprintf(dashboardTitle, grid.GeneratedAt.Format(dashboardTimeLayout), zone)
	header := []string{dashboardCornerCell}
	for _, d := range grid.Dates {
		header = append(header, d.Format(dashboardDayLayout))
	}

	table := [][]string{{title}, header}
	for _, row := range grid.Rows {
		line := []string{fmt.Sprintf("Court %d - %s", row.Court, row.TimeSlot)}
		for _, cell := range row.Cells {
			line = append(line, cell.Label())
		}
		table = append(table, line)
	}
	return table
}
