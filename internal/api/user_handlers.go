package api

import (
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/service"
	"courtbooking/internal/utils"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type UserReservationHandler struct {
	Reservations *service.ReservationService
	Availability *service.AvailabilityService
	Notifier     service.Notifier
	cfg          *config.Config
	now          func() time.Time
}

func NewUserReservationHandler(cfg *config.Config, reservations *service.ReservationService, availability *service.AvailabilityService, notifier service.Notifier) *UserReservationHandler {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	return &UserReservationHandler{
		Reservations: reservations,
		Availability: availability,
		Notifier:     notifier,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (h *UserReservationHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	grid, err := h.Availability.Grid(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (h *UserReservationHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(mux.Vars(r)["date"], h.cfg.Location())
	if err != nil {
		writeError(w, apperr.ErrBadRequest("Invalid date"))
		return
	}
	court := 0
	if c := r.URL.Query().Get("court"); c != "" {
		if court, err = strconv.Atoi(c); err != nil || court < 1 {
			writeError(w, apperr.ErrBadRequest("Invalid court"))
			return
		}
	}
	slots, err := h.Availability.AvailableSlots(r.Context(), date, court)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date.Format(db.DateLayout),
		"slots": slots,
	})
}

func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := service.NewReservation(h.cfg, service.BookingInput{
		Date:  req.Date,
		Time:  req.Time,
		Court: strconv.Itoa(req.Court),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkBookingWindow(res.Date); err != nil {
		writeError(w, err)
		return
	}

	// the HTTP surface books against a fresh ledger, like the sync pass does
	if _, err := h.Reservations.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	res, err = h.Reservations.Create(r.Context(), res)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(r, entities.NotificationBooked, res)

	writeJSON(w, http.StatusCreated, map[string]any{
		"reservation": toReservationResponse(res),
		"message":     "Reservation confirmed.",
	})
}

func (h *UserReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req CancelReservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := service.NewReservation(h.cfg, service.BookingInput{
		Date:  req.Date,
		Time:  req.Time,
		Court: strconv.Itoa(req.Court),
		Name:  req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	cancelled, err := h.Reservations.Cancel(r.Context(), target.Date, target.TimeSlot, target.Court, target.CustomerName)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(r, entities.NotificationCancelled, cancelled)

	writeJSON(w, http.StatusOK, map[string]any{
		"reservation": toReservationResponse(cancelled),
		"message":     "Reservation cancelled.",
	})
}

// checkBookingWindow only lets API clients book from today up to MaxAdvanceDays ahead.
func (h *UserReservationHandler) checkBookingWindow(date time.Time) error {
	loc := h.cfg.Location()
	today := utils.StartOfDay(h.now(), loc)
	last := today.AddDate(0, 0, h.cfg.MaxAdvanceDays)
	if date.Before(today) || date.After(last) {
		return fmt.Errorf("%w: %s is outside the booking window %s..%s", apperr.ErrDataError,
			date.Format(db.DateLayout), today.Format(db.DateLayout), last.Format(db.DateLayout))
	}
	return nil
}

// notify runs after the response decision; a failed notification never fails the request.
func (h *UserReservationHandler) notify(r *http.Request, kind entities.NotificationKind, res db.Reservation) {
	if err := h.Notifier.Notify(r.Context(), entities.Notification{Kind: kind, Reservation: res}); err != nil {
		slog.Warn("notifying customer", "kind", string(kind), "slot", res.Key().String(), "error", err)
	}
}
