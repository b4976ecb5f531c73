package scan

import (
	"time"
)

// Box is a pixel-space bounding box in (x, y, width, height) form.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the center point of the box.
func (b Box) Center() (cx, cy float64) {
	return float64(b.X) + float64(b.W)/2, float64(b.Y) + float64(b.H)/2
}

// Area returns the box area in square pixels.
func (b Box) Area() float64 {
	return float64(b.W) * float64(b.H)
}

// Right returns the x coordinate of the box's right edge.
func (b Box) Right() int {
	return b.X + b.W
}

// Bottom returns the y coordinate of the box's bottom edge.
func (b Box) Bottom() int {
	return b.Y + b.H
}

// Detection is a single observation of an object at one scan position.
// Detections are ephemeral: created during capture, consumed by the
// smoothing and deduplication stages, and discarded once a scan returns.
type Detection struct {
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Box           Box       `json:"box"`
	PanAngle      float64   `json:"pan_angle"`
	WorldAngle    float64   `json:"world_angle"`
	PositionIndex int       `json:"position_index"`
	Timestamp     time.Time `json:"timestamp"`
}

// Result holds the outcome of one scan: the deduplicated object list plus
// bookkeeping about the sweep that produced it. Objects are representative
// detections, one per physical object, owned by the caller.
type Result struct {
	ID            string      `json:"id"`
	Objects       []Detection `json:"objects"`
	Positions     []float64   `json:"positions"`
	RawDetections int         `json:"raw_detections"`
	Started       time.Time   `json:"started"`
	Completed     time.Time   `json:"completed"`
	Interrupted   bool        `json:"interrupted"`
}

// Summary returns per-label object counts for the result.
func (r *Result) Summary() map[string]int {
	byLabel := make(map[string]int, len(r.Objects))
	for _, obj := range r.Objects {
		byLabel[obj.Label]++
	}
	return byLabel
}
