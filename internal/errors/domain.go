package errors

import (
	"courtbooking/internal/db"
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a stored ledger row that cannot be decoded.
	ErrMalformedRecord = db.ErrMalformedRecord

	ErrAlreadyReserved = errors.New("already reserved")
	ErrNotFound        = errors.New("booking not found")

	ErrMissingName = errors.New("missing name")
	ErrDataError   = errors.New("data error")
)

// PersistenceError is a transport failure of the row store that survived retries.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
