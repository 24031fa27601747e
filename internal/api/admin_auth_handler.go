package api

import (
	apperr "courtbooking/internal/errors"
	"courtbooking/internal/service"
	"net/http"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, apperr.ErrUnauthorized("Invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
