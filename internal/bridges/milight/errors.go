package milight

import "errors"

// Domain errors for the MiLight bridge package.
var (
	// ErrMissingDependency is returned by NewBridge when a required option is nil.
	ErrMissingDependency = errors.New("milight: missing dependency")

	// ErrInvalidTopicPattern is returned when a configured topic pattern cannot be compiled.
	ErrInvalidTopicPattern = errors.New("milight: invalid topic pattern")

	// ErrInvalidCommand is returned when a command message cannot be decoded.
	ErrInvalidCommand = errors.New("milight: invalid command message")
)
