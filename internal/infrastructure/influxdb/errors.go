package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	// The hub then runs without radio telemetry.
	ErrDisabled = errors.New("influxdb: telemetry disabled in configuration")

	// ErrConnectionFailed means the server did not answer the startup ping.
	ErrConnectionFailed = errors.New("influxdb: server unreachable")

	// ErrNotConnected is returned by HealthCheck on a closed client.
	ErrNotConnected = errors.New("influxdb: client not connected")

	// ErrWriteFailed wraps a rejected packet batch handed to the SetOnError
	// callback. The batch is dropped; the radio is unaffected.
	ErrWriteFailed = errors.New("influxdb: packet batch write failed")
)
