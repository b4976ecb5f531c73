// Package detection provides object detection backends for scan capture.
package detection

// Object is one detected object with its pixel-space bounding box.
type Object struct {
	ClassID int     `json:"class_id"`
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	W       int     `json:"w"`
	H       int     `json:"h"`
}

// Center returns the center point of the bounding box.
func (o Object) Center() (x, y int) {
	return o.X + o.W/2, o.Y + o.H/2
}

// Area returns the bounding box area in pixels.
func (o Object) Area() int {
	return o.W * o.H
}

// Detector is the interface for object detection backends.
type Detector interface {
	// Detect finds objects in the JPEG image.
	Detect(jpeg []byte) ([]Object, error)

	// Close releases resources
	Close() error
}

// FilterClass keeps only objects of the given class.
func FilterClass(objects []Object, label string) []Object {
	var filtered []Object
	for _, obj := range objects {
		if obj.Label == label {
			filtered = append(filtered, obj)
		}
	}
	return filtered
}
