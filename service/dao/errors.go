package dao

import "errors"

// Sentinel errors shared by every store; detect them with errors.Is.
var (
	// ErrNotFound is returned when no record is stored under the key.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates a zero or negative key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when saving a nil record.
	ErrNilEntity = errors.New("dao: nil entity")
)
