package influxdb

import "errors"

// Sentinel errors for telemetry operations. Check them with errors.Is.
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	// The daemon treats it as "run without telemetry".
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: not connected")

	// ErrWriteFailed wraps batch failures delivered to the SetOnError callback.
	// Writes themselves never return errors.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
