package application

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	if got := (&ValidationError{}).Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"title": "title is required", "roomId": "room is required"}}
	if got := withFields.Error(); got != "validation failed: roomId: room is required; title: title is required" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestOperationFailedWrapsCause(t *testing.T) {
	t.Parallel()

	if operationFailed(nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
	err := operationFailed(errStoreDown)
	if !errors.Is(err, ErrOperationFailed) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected both sentinel and cause to match, got %v", err)
	}
	if ErrorKind(err) != "operation_failed" {
		t.Fatalf("unexpected kind %q", ErrorKind(err))
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[error]string{
		nil:                   "",
		ErrUnauthorized:       "unauthorized",
		ErrNotFound:           "not_found",
		ErrInvalidTimeRange:   "invalid_time_range",
		ErrDuplicateEmail:     "duplicate_email",
		ErrPasswordMismatch:   "password_mismatch",
		ErrInvalidCredentials: "invalid_credentials",
		&ValidationError{}:    "validation",
		errStoreDown:          "unexpected",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
