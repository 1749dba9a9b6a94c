package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrUpstream is returned when an external service call fails.
	ErrUpstream = errors.New("upstream service error")
	// ErrPersistence is returned when a storage operation fails.
	ErrPersistence = errors.New("persistence error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// wrapUpstream tags err as an upstream failure while preserving the cause.
func wrapUpstream(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrUpstream, err)
}

// wrapPersistence tags err as a storage failure while preserving the cause.
func wrapPersistence(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrPersistence, err)
}
