package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"already reserved", fmt.Errorf("slot: %w", ErrAlreadyReserved), http.StatusConflict},
		{"not found", fmt.Errorf("slot: %w", ErrNotFound), http.StatusNotFound},
		{"missing name", ErrMissingName, http.StatusBadRequest},
		{"data error", fmt.Errorf("%w: court 9", ErrDataError), http.StatusBadRequest},
		{"persistence", NewPersistenceError("append", errors.New("503")), http.StatusBadGateway},
		{"http error", ErrUnauthorized("nope"), http.StatusUnauthorized},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err).Code)
		})
	}
	assert.Nil(t, StatusFor(nil))
}

func TestPersistenceErrorIsNotWrappedTwice(t *testing.T) {
	cause := errors.New("quota exceeded")
	once := NewPersistenceError("read", cause)
	twice := NewPersistenceError("refresh", fmt.Errorf("refreshing: %w", once))

	var pe *PersistenceError
	assert.True(t, errors.As(twice, &pe))
	assert.Equal(t, "read", pe.Op)
	assert.ErrorIs(t, twice, cause)
	assert.True(t, IsPersistence(twice))
	assert.Nil(t, NewPersistenceError("noop", nil))
}
