// Package camera runs frame acquisition and keeps a store of currently
// tracked objects for the scanner to sample.
package camera

import (
	"fmt"
	"time"
)

// Config holds the acquisition parameters.
type Config struct {
	// === Capture ===
	Device    int `json:"device"`    // V4L2 device index
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS
	Quality   int `json:"quality"`   // JPEG quality 1-100

	// === Tracking ===
	// Interval is the pause between acquisition cycles.
	Interval time.Duration `json:"interval"`

	// MinScore drops detector output below this confidence before it
	// reaches the store.
	MinScore float64 `json:"min_score"`

	// StaleAfter evicts a tracked object not re-detected for this long.
	StaleAfter time.Duration `json:"stale_after"`

	// MatchIoU is the minimum overlap for a fresh detection to update an
	// existing tracked object instead of creating a new one.
	MatchIoU float64 `json:"match_iou"`
}

// DefaultConfig returns the calibrated acquisition defaults. The 1280x720
// capture matches the frame width assumed by world-angle projection.
func DefaultConfig() Config {
	return Config{
		Device:     0,
		Width:      1280,
		Height:     720,
		Framerate:  30,
		Quality:    85,
		Interval:   100 * time.Millisecond,
		MinScore:   0.3,
		StaleAfter: 2 * time.Second,
		MatchIoU:   0.3,
	}
}

// Validate checks if the config values are within valid ranges.
func (c Config) Validate() error {
	if c.Device < 0 {
		return fmt.Errorf("device must not be negative")
	}
	if c.Width < 160 || c.Height < 120 {
		return fmt.Errorf("resolution %dx%d below minimum 160x120", c.Width, c.Height)
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		return fmt.Errorf("framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1]")
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("stale_after must be positive")
	}
	if c.MatchIoU < 0 || c.MatchIoU > 1 {
		return fmt.Errorf("match_iou must be in [0, 1]")
	}
	return nil
}
