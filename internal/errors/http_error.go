package errors

import (
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

// StatusFor maps a domain error onto the HTTP status the API answers with.
func StatusFor(err error) *HTTPError {
	switch {
	case err == nil:
		return nil
	case Is(err, ErrAlreadyReserved):
		return NewHTTPError(http.StatusConflict, err.Error())
	case Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case Is(err, ErrMissingName), Is(err, ErrDataError):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case IsPersistence(err):
		return NewHTTPError(http.StatusBadGateway, "ledger unavailable")
	}
	var he *HTTPError
	if As(err, &he) {
		return he
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
