package controller

import "errors"

var (
	// ErrUnknownDeviceType is returned when no radio configuration or codec
	// exists for a device type.
	ErrUnknownDeviceType = errors.New("controller: unknown device type")

	// ErrMalformedCommand is returned for commands missing required fields.
	ErrMalformedCommand = errors.New("controller: malformed command")

	// ErrQueueFull is returned by Submit when the command queue is full.
	ErrQueueFull = errors.New("controller: command queue full")

	// ErrNotRunning is returned by Submit after Run has returned.
	ErrNotRunning = errors.New("controller: not running")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("controller: already running")
)
