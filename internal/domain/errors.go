package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden signals an ownership or role check failure.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized signals a missing authenticated principal.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIndexUnavailable signals that the search index is unreachable,
	// misconfigured, or disabled. It is a normal operating mode, not a fault:
	// read paths fall back to the relational store when they see it.
	ErrIndexUnavailable = errors.New("search index unavailable")
)

// ValidationError wraps ErrValidation with a caller-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
