package scan

import (
	"math"
	"testing"
)

func positionsFor(t *testing.T, fov, overlap, panMin, panMax float64) []float64 {
	t.Helper()

	cfg := DefaultConfig()
	cfg.FOVDegrees = fov
	cfg.OverlapDegrees = overlap
	cfg.PanMin = panMin
	cfg.PanMax = panMax

	positions, err := cfg.Positions()
	if err != nil {
		t.Fatalf("Positions() error: %v", err)
	}
	return positions
}

func TestPositions_DefaultCoverage(t *testing.T) {
	// IMX500 FOV with 10 degrees overlap over a 0-180 sweep.
	positions := positionsFor(t, 66.3, 10, 0, 180)

	if len(positions) == 0 {
		t.Fatal("no positions")
	}
	if positions[0] != 0 {
		t.Errorf("first position: got %v, want 0", positions[0])
	}
	if last := positions[len(positions)-1]; last < 175 {
		t.Errorf("last position: got %v, want >= 175", last)
	}

	// Regular spacing of fov - overlap between planned stops.
	for i := 1; i < len(positions)-1; i++ {
		step := positions[i] - positions[i-1]
		if math.Abs(step-56.3) > 1e-6 {
			t.Errorf("spacing between %d and %d: got %v, want 56.3", i-1, i, step)
		}
	}
}

func TestPositions_MonotonicAndBounded(t *testing.T) {
	tests := []struct {
		name         string
		fov, overlap float64
		min, max     float64
	}{
		{name: "default", fov: 66.3, overlap: 10, min: 0, max: 180},
		{name: "full range", fov: 66.3, overlap: 10, min: 0, max: 200},
		{name: "narrow sweep", fov: 40, overlap: 5, min: 40, max: 140},
		{name: "single position", fov: 120, overlap: 10, min: 80, max: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := positionsFor(t, tt.fov, tt.overlap, tt.min, tt.max)

			for i, p := range positions {
				if p < tt.min || p > tt.max {
					t.Errorf("position %d = %v outside [%v, %v]", i, p, tt.min, tt.max)
				}
				if i > 0 && p < positions[i-1] {
					t.Errorf("positions not monotonic at %d: %v after %v", i, p, positions[i-1])
				}
			}
		})
	}
}

func TestPositions_SmallerStepMorePositions(t *testing.T) {
	wide := positionsFor(t, 66.3, 10, 0, 180)
	tight := positionsFor(t, 66.3, 30, 0, 180)

	if len(tight) <= len(wide) {
		t.Errorf("expected more positions with larger overlap: %d vs %d", len(tight), len(wide))
	}
}

func TestPositions_TailAppended(t *testing.T) {
	// 56.3 degree steps leave 180 - 168.9 = 11.1 degrees uncovered, which
	// exceeds the 5 degree tolerance: the planner appends the max angle.
	positions := positionsFor(t, 66.3, 10, 0, 180)

	if last := positions[len(positions)-1]; last != 180 {
		t.Errorf("expected appended 180 stop, got %v", last)
	}
}

func TestPositions_NoTailWhenCovered(t *testing.T) {
	// 90 degree steps land exactly on the max: nothing appended.
	positions := positionsFor(t, 100, 10, 0, 180)

	want := []float64{0, 90, 180}
	if len(positions) != len(want) {
		t.Fatalf("got %d positions %v, want %v", len(positions), positions, want)
	}
	for i := range want {
		if !floatEquals(positions[i], want[i]) {
			t.Errorf("position %d: got %v, want %v", i, positions[i], want[i])
		}
	}
}

func TestPositions_InvalidOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FOVDegrees = 50
	cfg.OverlapDegrees = 50

	if _, err := cfg.Positions(); err == nil {
		t.Error("expected error when overlap consumes the whole FOV")
	}

	cfg.OverlapDegrees = 60
	if _, err := cfg.Positions(); err == nil {
		t.Error("expected error when overlap exceeds FOV")
	}
}

func TestOrderCenterOut(t *testing.T) {
	positions := []float64{0, 56.3, 112.6, 168.9, 180}
	ordered := OrderCenterOut(positions)

	if len(ordered) != len(positions) {
		t.Fatalf("got %d positions, want %d", len(ordered), len(positions))
	}

	center := (positions[0] + positions[len(positions)-1]) / 2
	for i := 1; i < len(ordered); i++ {
		if math.Abs(ordered[i]-center) < math.Abs(ordered[i-1]-center) {
			t.Errorf("position %d (%v) closer to center than %d (%v)", i, ordered[i], i-1, ordered[i-1])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero fov", mutate: func(c *Config) { c.FOVDegrees = 0 }, wantErr: true},
		{name: "overlap equals fov", mutate: func(c *Config) { c.OverlapDegrees = c.FOVDegrees }, wantErr: true},
		{name: "negative overlap", mutate: func(c *Config) { c.OverlapDegrees = -1 }, wantErr: true},
		{name: "inverted range", mutate: func(c *Config) { c.PanMin = 100; c.PanMax = 50 }, wantErr: true},
		{name: "zero frames", mutate: func(c *Config) { c.FramesPerPosition = 0 }, wantErr: true},
		{name: "confidence above one", mutate: func(c *Config) { c.ConfidenceThreshold = 1.5 }, wantErr: true},
		{name: "negative confidence", mutate: func(c *Config) { c.ConfidenceThreshold = -0.1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
