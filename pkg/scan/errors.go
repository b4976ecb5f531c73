package scan

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrScanInFlight is returned when a second scan is started while one
	// is already running. The scanner never queues or serializes scans;
	// overlapping starts are a caller bug.
	ErrScanInFlight = errors.New("scan: scan already in flight")

	// ErrNoPositions is returned when the configured range produces an
	// empty position list.
	ErrNoPositions = errors.New("scan: no scan positions in range")
)

// ConfigError reports an invalid scan or deduplication parameter. It is
// raised before any hardware motion and is never retried.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("scan: invalid %s: %s", e.Field, e.Reason)
}

// HardwareError wraps a failed servo or camera command issued during the
// sweep. Positions after the failure are abandoned, but deduplication
// still runs over whatever was captured.
type HardwareError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *HardwareError) Error() string {
	return fmt.Sprintf("scan: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *HardwareError) Unwrap() error {
	return e.Err
}
