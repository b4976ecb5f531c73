package scan

// Smoother fuses repeated same-position, same-label samples into one
// weighted-average detection per group (weighted box fusion). Groups
// smaller than MinFrames keep only their highest-confidence member,
// unmodified.
//
// Grouping is by (position index, label), so two same-label objects
// visible simultaneously at one position collapse into a single fused
// box. That is a known limitation of the capture model, not something the
// smoother tries to disambiguate.
type Smoother struct {
	MinFrames int
	Projector Projector
}

// groupKey identifies one (position, label) sample group.
type groupKey struct {
	positionIndex int
	label         string
}

// Smooth returns at most one detection per (position index, label) group.
// Output order follows the first appearance of each group in the input,
// making the stage deterministic for a fixed input.
func (s Smoother) Smooth(detections []Detection) []Detection {
	if len(detections) == 0 {
		return nil
	}

	groups := make(map[groupKey][]Detection)
	var order []groupKey
	for _, det := range detections {
		key := groupKey{positionIndex: det.PositionIndex, label: det.Label}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], det)
	}

	smoothed := make([]Detection, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if len(group) >= s.MinFrames {
			if fused, ok := s.fuse(group); ok {
				smoothed = append(smoothed, fused)
				continue
			}
		}
		smoothed = append(smoothed, bestOf(group))
	}
	return smoothed
}

// fuse computes the confidence-weighted average box for a group and
// rebuilds the world angle from the fused box. The highest-confidence
// member supplies everything except the box and world angle.
func (s Smoother) fuse(group []Detection) (Detection, bool) {
	totalWeight := 0.0
	for _, det := range group {
		totalWeight += det.Confidence
	}
	if totalWeight <= 0 {
		return Detection{}, false
	}

	var avgX, avgY, avgW, avgH float64
	for _, det := range group {
		avgX += float64(det.Box.X) * det.Confidence
		avgY += float64(det.Box.Y) * det.Confidence
		avgW += float64(det.Box.W) * det.Confidence
		avgH += float64(det.Box.H) * det.Confidence
	}

	fused := bestOf(group)
	fused.Box = Box{
		X: int(avgX / totalWeight),
		Y: int(avgY / totalWeight),
		W: int(avgW / totalWeight),
		H: int(avgH / totalWeight),
	}
	fused.WorldAngle = s.Projector.Project(fused.Box, fused.PanAngle)
	return fused, true
}

// bestOf returns the highest-confidence member of a non-empty group.
func bestOf(group []Detection) Detection {
	best := group[0]
	for _, det := range group[1:] {
		if det.Confidence > best.Confidence {
			best = det
		}
	}
	return best
}
