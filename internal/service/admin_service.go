package service

import (
	"context"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"time"
)

// AdminService backs the protected operator endpoints.
type AdminService struct {
	reservations *ReservationService
	jobs         *JobService
}

func NewAdminService(reservations *ReservationService, jobs *JobService) *AdminService {
	return &AdminService{reservations: reservations, jobs: jobs}
}

// ListReservations returns the fresh ledger, optionally narrowed to one day.
func (s *AdminService) ListReservations(ctx context.Context, date *time.Time) ([]db.Reservation, error) {
	all, err := s.reservations.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return all, nil
	}
	return s.reservations.ForDate(*date), nil
}

func (s *AdminService) Conflicts(ctx context.Context) ([]entities.Conflict, error) {
	if _, err := s.reservations.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.reservations.FindConflicts(), nil
}

func (s *AdminService) Sync(ctx context.Context) (entities.SyncReport, error) {
	return s.jobs.RunSync(ctx)
}

func (s *AdminService) Archive(ctx context.Context) (int, error) {
	return s.jobs.Archive(ctx)
}
