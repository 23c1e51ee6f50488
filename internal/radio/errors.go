package radio

import "errors"

var (
	// ErrConfig is returned for frame parameters the radio cannot carry.
	ErrConfig = errors.New("radio: invalid configuration")

	// ErrHardware wraps any failure reported by the underlying Device.
	ErrHardware = errors.New("radio: hardware error")

	// ErrNotReceived is returned by Read when no frame is waiting.
	ErrNotReceived = errors.New("radio: no frame received")
)
