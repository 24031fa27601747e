package api

import (
	"courtbooking/internal/auth"
	"courtbooking/internal/config"
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/runlock"
	"courtbooking/internal/service"
	"courtbooking/internal/utils"
	"log/slog"
	"net/http"
	"time"
)

type AdminHandler struct {
	Service *service.AdminService
	cfg     *config.Config
}

func NewAdminHandler(cfg *config.Config, svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc, cfg: cfg}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := utils.ParseDate(d, h.cfg.Location())
		if err != nil {
			writeError(w, apperr.ErrBadRequest("Invalid date"))
			return
		}
		date = &parsed
	}
	reservations, err := h.Service.ListReservations(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponses(reservations))
}

func (h *AdminHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.Service.Conflicts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conflicts)
}

func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if claims, ok := auth.AdminFrom(r.Context()); ok {
		slog.Info("manual sync requested", "admin", claims.Email)
	}
	report, err := h.Service.Sync(r.Context())
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) Archive(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.Archive(r.Context())
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveResponse{Archived: n})
}

func writeJobError(w http.ResponseWriter, err error) {
	if apperr.Is(err, runlock.ErrLocked) {
		writeError(w, apperr.NewHTTPError(http.StatusConflict, err.Error()))
		return
	}
	writeError(w, err)
}
