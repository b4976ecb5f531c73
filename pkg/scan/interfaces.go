package scan

// TrackedObject is the read-only view of one object currently tracked by
// the camera's background acquisition.
type TrackedObject struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Box   Box     `json:"box"`
}

// Camera is the detection source consumed by the scanner. The camera may
// run its own background acquisition; TrackedObjects must return an
// immutable snapshot taken at call time, never a live structure that can
// mutate underneath the caller.
type Camera interface {
	// Start begins frame acquisition. Safe to call on a running camera.
	Start() error

	// Stop halts acquisition and releases the capture device.
	Stop()

	// TrackedObjects returns a snapshot of currently tracked objects.
	TrackedObjects() ([]TrackedObject, error)

	// ClearTrackedObjects drops the transient tracking history so the
	// next snapshot only contains objects seen at the current position.
	ClearTrackedObjects()
}

// ServoController moves one servo channel to an absolute angle.
type ServoController interface {
	SetServoAngle(channel int, angle float64) error
}

// SmoothMover is optionally implemented by servo controllers that support
// interpolated moves. When available it is preferred for position changes;
// detection ordering and results are unaffected either way.
type SmoothMover interface {
	SmoothMoveToAngle(channel int, angle, speed float64) error
}
