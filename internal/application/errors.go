package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidTimeRange is returned when a booking does not end strictly after it starts.
	ErrInvalidTimeRange = errors.New("application: end time must be after start time")
	// ErrDuplicateEmail is returned when registering an email already in the user table.
	ErrDuplicateEmail = errors.New("application: email already registered")
	// ErrPasswordMismatch is returned when the password confirmation differs.
	ErrPasswordMismatch = errors.New("application: passwords do not match")
	// ErrInvalidCredentials is returned for any failed login, without saying which part was wrong.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrOperationFailed wraps failures of the durable store.
	ErrOperationFailed = errors.New("application: operation failed")
)

// operationFailed tags a store failure so callers can match ErrOperationFailed
// while the cause stays reachable through errors.Is.
func operationFailed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrOperationFailed, err)
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
