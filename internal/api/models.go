package api

import (
	"courtbooking/internal/db"
	"time"
)

// Reservation
type CreateReservationRequest struct {
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Court int    `json:"court" validate:"required,min=1"`
	Name  string `json:"name" validate:"required,max=120"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
	Email string `json:"email" validate:"omitempty,email"`
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

type CancelReservationRequest struct {
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Court int    `json:"court" validate:"required,min=1"`
	Name  string `json:"name" validate:"required"`
}

type ReservationResponse struct {
	Date         string    `json:"date"`
	TimeSlot     string    `json:"time_slot"`
	Court        int       `json:"court"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Notes        string    `json:"notes,omitempty"`
	Row          int       `json:"row,omitempty"`
}

func toReservationResponse(r db.Reservation) ReservationResponse {
	return ReservationResponse{
		Date:         r.Date.Format(db.DateLayout),
		TimeSlot:     r.TimeSlot,
		Court:        r.Court,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Email:        r.Email,
		Status:       r.Status.String(),
		CreatedAt:    r.CreatedAt,
		Notes:        r.Notes,
		Row:          r.Row,
	}
}

func toReservationResponses(rs []db.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResponse(r))
	}
	return out
}

// Admin
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ArchiveResponse struct {
	Archived int `json:"archived"`
}
