package scan

import "math"

// IoU returns the intersection-over-union of two boxes: 1.0 for identical
// boxes, 0.0 for disjoint ones. Symmetric in its arguments.
func IoU(a, b Box) float64 {
	left := maxInt(a.X, b.X)
	top := maxInt(a.Y, b.Y)
	right := minInt(a.Right(), b.Right())
	bottom := minInt(a.Bottom(), b.Bottom())

	if left >= right || top >= bottom {
		return 0.0
	}

	intersection := float64(right-left) * float64(bottom-top)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0.0
	}
	return intersection / union
}

// centerDistance returns the Euclidean distance between two box centers.
func centerDistance(a, b Box) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}

// spatialSimilarity combines normalized center distance with size ratio.
// Closer centers and similar sizes score higher; the result is clamped to
// [0, 1]. refDiagonal is the reference frame diagonal used to normalize
// the center distance. It is a calibration constant, not derived from the
// actual camera resolution.
func spatialSimilarity(a, b Box, refDiagonal float64) float64 {
	normalized := centerDistance(a, b) / refDiagonal

	sizeRatio := 0.0
	if bigger := math.Max(a.Area(), b.Area()); bigger > 0 {
		sizeRatio = math.Min(a.Area(), b.Area()) / bigger
	}

	similarity := (1-normalized)*0.7 + sizeRatio*0.3
	return math.Max(0, math.Min(1, similarity))
}

// boxesNearby reports whether two box centers are within multiplier times
// the average box side length (sqrt of area) of each other.
func boxesNearby(a, b Box, multiplier float64) bool {
	avgSize := (math.Sqrt(a.Area()) + math.Sqrt(b.Area())) / 2
	return centerDistance(a, b) < avgSize*multiplier
}

// Projector converts a bounding box observed at a known pan angle into an
// absolute world angle. The math uses the pinhole model: the pixel offset
// of the box center from the frame center is converted through the focal
// length implied by the horizontal FOV.
//
// World angles are not normalized into [0, 360); a box centered on the
// frame projects exactly to the pan angle.
type Projector struct {
	FrameWidth    int     // frame width in pixels
	FOVHorizontal float64 // horizontal field of view in degrees
}

// Project returns the world angle for a box seen at panAngle.
func (p Projector) Project(box Box, panAngle float64) float64 {
	centerX := float64(box.X) + float64(box.W)/2
	pixelOffset := centerX - float64(p.FrameWidth)/2

	fovRadians := p.FOVHorizontal * math.Pi / 180
	focalPixels := float64(p.FrameWidth) / (2 * math.Tan(fovRadians/2))

	offsetRadians := math.Atan(pixelOffset / focalPixels)
	return panAngle + offsetRadians*180/math.Pi
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
