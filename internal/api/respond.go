package api

import (
	apperr "courtbooking/internal/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

// writeError answers with the status the domain error maps to.
func writeError(w http.ResponseWriter, err error) {
	he := apperr.StatusFor(err)
	if he.Code >= http.StatusInternalServerError {
		slog.Error("request failed", "status", he.Code, "error", err)
	}
	writeJSON(w, he.Code, map[string]string{"error": he.Message})
}

// decode reads a JSON body into v and runs its validate tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ErrBadRequest("Invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return apperr.ErrBadRequest(fmt.Sprintf("Invalid request: %v", err))
	}
	return nil
}
