package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrCorrupt is returned when a stored snapshot cannot be decoded.
	ErrCorrupt = errors.New("persistence: corrupt snapshot")
)
