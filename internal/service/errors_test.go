package service

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "query", Message: "cannot be empty"}
	want := "validation error on field query: cannot be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapError(t *testing.T) {
	if got := WrapError(nil, "context"); got != nil {
		t.Errorf("WrapError(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	wrapped := WrapError(cause, "doing the thing")
	if !errors.Is(wrapped, cause) {
		t.Errorf("wrapped error should match its cause")
	}
	if wrapped.Error() != "doing the thing: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestWrapUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapUpstream(cause, "failed to call LLM")

	if !errors.Is(err, ErrUpstream) {
		t.Error("error should match ErrUpstream")
	}
	if !errors.Is(err, cause) {
		t.Error("error should preserve the cause")
	}
	if errors.Is(err, ErrPersistence) {
		t.Error("error should not match ErrPersistence")
	}
}

func TestWrapPersistence(t *testing.T) {
	cause := errors.New("database is locked")
	err := wrapPersistence(cause, "failed to commit")

	if !errors.Is(err, ErrPersistence) {
		t.Error("error should match ErrPersistence")
	}
	if !errors.Is(err, cause) {
		t.Error("error should preserve the cause")
	}
	if errors.Is(err, ErrUpstream) {
		t.Error("error should not match ErrUpstream")
	}
}
