package persistence

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")

	// ErrConstraintViolation is returned when an insert breaks a schema
	// constraint (duplicate natural key, broken reference).
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
