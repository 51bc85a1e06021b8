package model

import (
	"errors"
	"fmt"
)

// Engine error kinds. Handlers map these to HTTP statuses; everything else is
// treated as an internal persistence failure and surfaced as a generic 500 so
// callers can tell "retry is safe" from "input was rejected".
var (
	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientQuantity: a reservation would overdraw a lot. The caller
	// should re-read availability and retry or abort.
	ErrInsufficientQuantity = errors.New("insufficient lot quantity")

	// ErrCertificationExpired: the producer certificate is not valid at the
	// allocation date.
	ErrCertificationExpired = errors.New("producer certification expired")

	// ErrConflict: the operation contradicts current state — double delete,
	// double release, or a terminal status transition attempted twice.
	ErrConflict = errors.New("conflicting state")

	// ErrTxAbort: the transaction lost a serialization conflict; safe to retry.
	ErrTxAbort = errors.New("transaction aborted, retry")
)

// ValidationError reports malformed input: non-positive quantities, unknown
// receptions, missing locations, mixed product types without the flag.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
