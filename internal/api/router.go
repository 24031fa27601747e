package api

import (
	"courtbooking/internal/auth"
	"courtbooking/internal/metrics"
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	User      *UserReservationHandler
	Admin     *AdminHandler
	AdminAuth *AdminAuthHandler
	JWTSecret string
}

func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", h.User.GetAvailability).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/{date}", h.User.GetAvailableSlots).Methods(http.MethodGet)
	r.HandleFunc("/api/reservations", h.User.CreateReservation).Methods(http.MethodPost)
	r.HandleFunc("/api/reservations/cancel", h.User.CancelReservation).Methods(http.MethodPost)
	r.HandleFunc("/admin/login", h.AdminAuth.Login).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(h.JWTSecret))
	admin.HandleFunc("/sync", h.Admin.Sync).Methods(http.MethodPost)
	admin.HandleFunc("/archive", h.Admin.Archive).Methods(http.MethodPost)
	admin.HandleFunc("/conflicts", h.Admin.Conflicts).Methods(http.MethodGet)
	admin.HandleFunc("/reservations", h.Admin.ListReservations).Methods(http.MethodGet)
	return r
}
