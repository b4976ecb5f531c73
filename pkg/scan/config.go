package scan

import (
	"math"
	"sort"
	"time"
)

// Default scan parameters. FOV and frame width match the IMX500 camera
// module the scanner was calibrated against.
const (
	DefaultFOVDegrees          = 66.3
	DefaultOverlapDegrees      = 10.0
	DefaultPanMin              = 0.0
	DefaultPanMax              = 180.0
	DefaultFramesPerPosition   = 6
	DefaultConfidenceThreshold = 0.6
	DefaultScanTilt            = 90.0
	DefaultFrameWidth          = 1280
	DefaultCenterPan           = 90.0
	DefaultCenterTilt          = 90.0

	// DefaultSettlingTime is the trusted-quiet time after a servo move,
	// letting vibration die down before sampling.
	DefaultSettlingTime = time.Second

	// DefaultRefreshDelay follows ClearTrackedObjects, giving the camera
	// time to accumulate fresh detections at the new position.
	DefaultRefreshDelay = time.Second

	// DefaultFrameDelay is the fixed pause between capture samples.
	DefaultFrameDelay = 200 * time.Millisecond

	// coverageTolerance is how much of the pan range the final planned
	// position may leave uncovered before an extra stop at PanMax is
	// appended.
	coverageTolerance = 5.0
)

// Servo channel assignments on the pan/tilt bracket.
const (
	PanChannel  = 0
	TiltChannel = 1
)

// Config holds the tunable parameters for one scan.
type Config struct {
	// Geometry
	FOVDegrees     float64 // camera horizontal field of view
	OverlapDegrees float64 // angular redundancy between adjacent positions
	PanMin         float64 // lower bound of the sweep
	PanMax         float64 // upper bound of the sweep
	ScanTilt       float64 // fixed tilt held throughout the sweep
	FrameWidth     int     // frame width in pixels, for world-angle projection

	// Capture
	FramesPerPosition   int           // samples per position
	FrameDelay          time.Duration // pause between samples
	SettlingTime        time.Duration // quiet time after each move
	RefreshDelay        time.Duration // wait after clearing tracked objects
	ConfidenceThreshold float64       // minimum accepted detection score

	// Home position commanded after the sweep.
	CenterPan  float64
	CenterTilt float64
}

// DefaultConfig returns the calibrated production defaults.
func DefaultConfig() Config {
	return Config{
		FOVDegrees:          DefaultFOVDegrees,
		OverlapDegrees:      DefaultOverlapDegrees,
		PanMin:              DefaultPanMin,
		PanMax:              DefaultPanMax,
		ScanTilt:            DefaultScanTilt,
		FrameWidth:          DefaultFrameWidth,
		FramesPerPosition:   DefaultFramesPerPosition,
		FrameDelay:          DefaultFrameDelay,
		SettlingTime:        DefaultSettlingTime,
		RefreshDelay:        DefaultRefreshDelay,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		CenterPan:           DefaultCenterPan,
		CenterTilt:          DefaultCenterTilt,
	}
}

// Validate checks the configuration before any hardware is touched.
func (c Config) Validate() error {
	if c.FOVDegrees <= 0 {
		return &ConfigError{Field: "fov_degrees", Reason: "must be positive"}
	}
	if c.OverlapDegrees < 0 {
		return &ConfigError{Field: "overlap_degrees", Reason: "must not be negative"}
	}
	if c.OverlapDegrees >= c.FOVDegrees {
		return &ConfigError{Field: "overlap_degrees", Reason: "must be smaller than fov_degrees"}
	}
	if c.PanMax < c.PanMin {
		return &ConfigError{Field: "pan_max", Reason: "must not be below pan_min"}
	}
	if c.FrameWidth <= 0 {
		return &ConfigError{Field: "frame_width", Reason: "must be positive"}
	}
	if c.FramesPerPosition < 1 {
		return &ConfigError{Field: "frames_per_position", Reason: "must be at least 1"}
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return &ConfigError{Field: "confidence_threshold", Reason: "must be in [0, 1]"}
	}
	if c.FrameDelay < 0 || c.SettlingTime < 0 || c.RefreshDelay < 0 {
		return &ConfigError{Field: "delays", Reason: "must not be negative"}
	}
	return nil
}

// Projector returns the world-angle projector implied by this config.
func (c Config) Projector() Projector {
	return Projector{FrameWidth: c.FrameWidth, FOVHorizontal: c.FOVDegrees}
}

// Positions computes the ordered pan angles covering [PanMin, PanMax].
// Each step advances by the effective field of view (FOV minus overlap).
// If the last regular position leaves more than 5 degrees of the range
// uncovered, a final stop at PanMax is appended. Pure and deterministic.
func (c Config) Positions() ([]float64, error) {
	effectiveStep := c.FOVDegrees - c.OverlapDegrees
	if effectiveStep <= 0 {
		return nil, &ConfigError{Field: "overlap_degrees", Reason: "must be smaller than fov_degrees"}
	}

	scanRange := c.PanMax - c.PanMin
	count := int(math.Floor(scanRange/effectiveStep)) + 1

	positions := make([]float64, 0, count+1)
	for i := 0; i < count; i++ {
		position := c.PanMin + float64(i)*effectiveStep
		if position <= c.PanMax {
			positions = append(positions, position)
		}
	}

	if len(positions) > 0 && positions[len(positions)-1] < c.PanMax-coverageTolerance {
		positions = append(positions, c.PanMax)
	}

	return positions, nil
}

// OrderCenterOut reorders a position list so the angles closest to the
// range center come first. Useful for early-hit sweeps that stop as soon
// as something is found; the default orchestrator path scans in planner
// order.
func OrderCenterOut(positions []float64) []float64 {
	if len(positions) == 0 {
		return nil
	}
	center := (positions[0] + positions[len(positions)-1]) / 2

	ordered := make([]float64, len(positions))
	copy(ordered, positions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return math.Abs(ordered[i]-center) < math.Abs(ordered[j]-center)
	})
	return ordered
}
