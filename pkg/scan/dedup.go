package scan

import (
	"math"
	"sort"
)

// Deduplication defaults, calibrated against the 1280-wide capture frame
// and a 640x480 reference frame for spatial similarity.
const (
	DefaultWorldAngleTolerance = 25.0
	DefaultYTolerance          = 50.0
	DefaultIoUThreshold        = 0.2
	DefaultSpatialThreshold    = 0.7
	DefaultNearbyMultiplier    = 2.0
	DefaultRightEdgeThreshold  = 1200.0
	DefaultLeftEdgeThreshold   = 80.0
	DefaultMinFrames           = 3
	DefaultRefFrameWidth       = 640
	DefaultRefFrameHeight      = 480
)

// DedupConfig selects and tunes the duplicate-detection heuristics. Each
// heuristic has its own enable flag and threshold so calibration runs can
// toggle them independently.
type DedupConfig struct {
	// World-angle clustering: two detections whose world angles lie
	// within WorldAngleTolerance degrees are the same object. When
	// YMatching is set the angle match additionally requires the box y
	// origins to be within YTolerance pixels.
	WorldAngleClustering bool    `json:"world_angle_clustering"`
	WorldAngleTolerance  float64 `json:"world_angle_tolerance"`
	YMatching            bool    `json:"y_matching"`
	YTolerance           float64 `json:"y_tolerance"`

	// Box overlap: IoU above IoUThreshold.
	BoxOverlap   bool    `json:"box_overlap"`
	IoUThreshold float64 `json:"iou_threshold"`

	// Spatial similarity: weighted center-distance + size-ratio score
	// above SpatialThreshold. The center distance is normalized by the
	// diagonal of a fixed RefFrameWidth x RefFrameHeight reference frame,
	// not by the actual camera resolution.
	SpatialSimilarity bool    `json:"spatial_similarity"`
	SpatialThreshold  float64 `json:"spatial_threshold"`
	RefFrameWidth     int     `json:"ref_frame_width"`
	RefFrameHeight    int     `json:"ref_frame_height"`

	// Nearby centers: center distance below NearbyMultiplier times the
	// average box side length.
	NearbyCenters    bool    `json:"nearby_centers"`
	NearbyMultiplier float64 `json:"nearby_multiplier"`

	// Edge overlap: an object leaving the right edge of one position and
	// entering the left edge of the adjacent position, at similar height,
	// is the same object seen across the FOV boundary.
	EdgeOverlap        bool    `json:"edge_overlap"`
	RightEdgeThreshold float64 `json:"right_edge_threshold"`
	LeftEdgeThreshold  float64 `json:"left_edge_threshold"`

	// MinFrames is the minimum group size for temporal smoothing to fuse
	// boxes rather than keep the single best sample.
	MinFrames int `json:"min_frames"`
}

// DefaultDedupConfig enables every heuristic with calibrated thresholds.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		WorldAngleClustering: true,
		WorldAngleTolerance:  DefaultWorldAngleTolerance,
		YMatching:            true,
		YTolerance:           DefaultYTolerance,
		BoxOverlap:           true,
		IoUThreshold:         DefaultIoUThreshold,
		SpatialSimilarity:    true,
		SpatialThreshold:     DefaultSpatialThreshold,
		RefFrameWidth:        DefaultRefFrameWidth,
		RefFrameHeight:       DefaultRefFrameHeight,
		NearbyCenters:        true,
		NearbyMultiplier:     DefaultNearbyMultiplier,
		EdgeOverlap:          true,
		RightEdgeThreshold:   DefaultRightEdgeThreshold,
		LeftEdgeThreshold:    DefaultLeftEdgeThreshold,
		MinFrames:            DefaultMinFrames,
	}
}

// Validate checks threshold sanity for the enabled heuristics.
func (c DedupConfig) Validate() error {
	if c.WorldAngleTolerance < 0 {
		return &ConfigError{Field: "world_angle_tolerance", Reason: "must not be negative"}
	}
	if c.YTolerance < 0 {
		return &ConfigError{Field: "y_tolerance", Reason: "must not be negative"}
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return &ConfigError{Field: "iou_threshold", Reason: "must be in [0, 1]"}
	}
	if c.SpatialThreshold < 0 || c.SpatialThreshold > 1 {
		return &ConfigError{Field: "spatial_threshold", Reason: "must be in [0, 1]"}
	}
	if c.RefFrameWidth <= 0 || c.RefFrameHeight <= 0 {
		return &ConfigError{Field: "ref_frame", Reason: "dimensions must be positive"}
	}
	if c.NearbyMultiplier < 0 {
		return &ConfigError{Field: "nearby_multiplier", Reason: "must not be negative"}
	}
	if c.LeftEdgeThreshold < 0 || c.RightEdgeThreshold < 0 {
		return &ConfigError{Field: "edge_thresholds", Reason: "must not be negative"}
	}
	if c.MinFrames < 1 {
		return &ConfigError{Field: "min_frames", Reason: "must be at least 1"}
	}
	return nil
}

// refDiagonal returns the reference frame diagonal used by the spatial
// similarity heuristic.
func (c DedupConfig) refDiagonal() float64 {
	return math.Hypot(float64(c.RefFrameWidth), float64(c.RefFrameHeight))
}

// heuristic is one pure duplicate predicate over a detection pair. All
// predicates are symmetric.
type heuristic struct {
	name  string
	match func(a, b Detection) bool
}

// buildHeuristics compiles the enabled heuristics into an ordered list.
// Enabling or disabling a method is list membership, not branching: the
// deduplication pass simply ORs whatever is registered. The edge heuristic
// is registered first because it is the most specific.
func buildHeuristics(cfg DedupConfig) []heuristic {
	var hs []heuristic

	if cfg.EdgeOverlap {
		hs = append(hs, heuristic{name: "edge_overlap", match: func(a, b Detection) bool {
			return edgeOverlapMatch(a, b, cfg)
		}})
	}
	if cfg.WorldAngleClustering {
		hs = append(hs, heuristic{name: "world_angle", match: func(a, b Detection) bool {
			if math.Abs(a.WorldAngle-b.WorldAngle) >= cfg.WorldAngleTolerance {
				return false
			}
			if cfg.YMatching {
				return math.Abs(float64(a.Box.Y-b.Box.Y)) < cfg.YTolerance
			}
			return true
		}})
	}
	if cfg.BoxOverlap {
		hs = append(hs, heuristic{name: "box_overlap", match: func(a, b Detection) bool {
			return IoU(a.Box, b.Box) > cfg.IoUThreshold
		}})
	}
	if cfg.SpatialSimilarity {
		refDiag := cfg.refDiagonal()
		hs = append(hs, heuristic{name: "spatial_similarity", match: func(a, b Detection) bool {
			return spatialSimilarity(a.Box, b.Box, refDiag) > cfg.SpatialThreshold
		}})
	}
	if cfg.NearbyCenters {
		hs = append(hs, heuristic{name: "nearby_centers", match: func(a, b Detection) bool {
			return boxesNearby(a.Box, b.Box, cfg.NearbyMultiplier)
		}})
	}

	return hs
}

// edgeOverlapMatch detects the same object straddling the FOV boundary of
// two adjacent scan positions: near the right edge of the earlier frame,
// near the left edge of the later frame, at similar height.
func edgeOverlapMatch(a, b Detection, cfg DedupConfig) bool {
	if a.PositionIndex == b.PositionIndex {
		return false
	}
	diff := a.PositionIndex - b.PositionIndex
	if diff != 1 && diff != -1 {
		return false
	}

	earlier, later := a, b
	if b.PositionIndex < a.PositionIndex {
		earlier, later = b, a
	}

	rightEdge := float64(earlier.Box.Right()) > cfg.RightEdgeThreshold
	leftEdge := float64(later.Box.X) < cfg.LeftEdgeThreshold
	ySimilar := math.Abs(float64(earlier.Box.Y-later.Box.Y)) < cfg.YTolerance

	return rightEdge && leftEdge && ySimilar
}

// Deduplicator collapses detections of the same physical object seen from
// different scan positions into one record per object.
type Deduplicator struct {
	cfg        DedupConfig
	heuristics []heuristic
}

// NewDeduplicator builds a deduplicator from the given configuration.
func NewDeduplicator(cfg DedupConfig) (*Deduplicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Deduplicator{cfg: cfg, heuristics: buildHeuristics(cfg)}, nil
}

// Deduplicate runs the greedy confidence-first pass: detections are
// visited in descending confidence order (stable, so equal confidences
// keep their input order) and a candidate is discarded as soon as any
// registered heuristic matches it against an already accepted detection.
// Detections with different labels are never merged. Re-running on the
// output with the same config returns it unchanged.
func (d *Deduplicator) Deduplicate(detections []Detection) []Detection {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	unique := make([]Detection, 0, len(sorted))
	for _, candidate := range sorted {
		if !d.isDuplicate(candidate, unique) {
			unique = append(unique, candidate)
		}
	}
	return unique
}

// isDuplicate tests the candidate against every accepted detection.
func (d *Deduplicator) isDuplicate(candidate Detection, accepted []Detection) bool {
	for _, existing := range accepted {
		if candidate.Label != existing.Label {
			continue
		}
		for _, h := range d.heuristics {
			if h.match(candidate, existing) {
				return true
			}
		}
	}
	return false
}
