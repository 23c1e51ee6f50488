package state

import "errors"

var (
	// ErrInvalidKey is returned when a bulb key has no device type.
	ErrInvalidKey = errors.New("state: invalid bulb key")

	// ErrNotFound is returned when no snapshot is stored for a key.
	ErrNotFound = errors.New("state: not found")
)
