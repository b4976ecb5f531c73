package scan

import (
	"testing"
	"time"
)

func testSmoother() Smoother {
	return Smoother{
		MinFrames: 3,
		Projector: Projector{FrameWidth: 1280, FOVHorizontal: 66.3},
	}
}

func sample(label string, pos int, conf float64, box Box) Detection {
	p := Projector{FrameWidth: 1280, FOVHorizontal: 66.3}
	pan := 45.0
	return Detection{
		Label:         label,
		Confidence:    conf,
		Box:           box,
		PanAngle:      pan,
		WorldAngle:    p.Project(box, pan),
		PositionIndex: pos,
		Timestamp:     time.Now(),
	}
}

func TestSmoother_Empty(t *testing.T) {
	if got := testSmoother().Smooth(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestSmoother_OnePerGroup(t *testing.T) {
	detections := []Detection{
		sample("person", 0, 0.8, Box{X: 100, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.9, Box{X: 102, Y: 101, W: 52, H: 98}),
		sample("person", 0, 0.85, Box{X: 98, Y: 99, W: 49, H: 101}),
		sample("person", 1, 0.7, Box{X: 30, Y: 100, W: 50, H: 100}),
		sample("chair", 0, 0.75, Box{X: 400, Y: 200, W: 80, H: 120}),
	}

	smoothed := testSmoother().Smooth(detections)

	seen := make(map[groupKey]int)
	for _, det := range smoothed {
		seen[groupKey{det.PositionIndex, det.Label}]++
	}
	for key, count := range seen {
		if count > 1 {
			t.Errorf("group %v emitted %d detections, want at most 1", key, count)
		}
	}
	if len(smoothed) != 3 {
		t.Errorf("got %d smoothed detections, want 3", len(smoothed))
	}
}

func TestSmoother_WeightedAverage(t *testing.T) {
	detections := []Detection{
		sample("person", 0, 0.5, Box{X: 100, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.5, Box{X: 200, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.5, Box{X: 300, Y: 100, W: 50, H: 100}),
	}

	smoothed := testSmoother().Smooth(detections)
	if len(smoothed) != 1 {
		t.Fatalf("got %d detections, want 1", len(smoothed))
	}

	// Equal weights: plain average of x origins.
	if got := smoothed[0].Box.X; got != 200 {
		t.Errorf("fused x: got %d, want 200", got)
	}
	if got := smoothed[0].Box.W; got != 50 {
		t.Errorf("fused w: got %d, want 50", got)
	}
}

func TestSmoother_WorldAngleRecomputed(t *testing.T) {
	s := testSmoother()
	detections := []Detection{
		sample("person", 0, 0.9, Box{X: 500, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.9, Box{X: 700, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.9, Box{X: 600, Y: 100, W: 50, H: 100}),
	}

	smoothed := s.Smooth(detections)
	if len(smoothed) != 1 {
		t.Fatalf("got %d detections, want 1", len(smoothed))
	}

	want := s.Projector.Project(smoothed[0].Box, smoothed[0].PanAngle)
	if !floatEquals(smoothed[0].WorldAngle, want) {
		t.Errorf("world angle not recomputed from fused box: got %v, want %v", smoothed[0].WorldAngle, want)
	}
}

func TestSmoother_BelowMinFramesKeepsBest(t *testing.T) {
	best := sample("person", 0, 0.9, Box{X: 100, Y: 100, W: 50, H: 100})
	other := sample("person", 0, 0.6, Box{X: 110, Y: 105, W: 48, H: 95})

	smoothed := testSmoother().Smooth([]Detection{other, best})
	if len(smoothed) != 1 {
		t.Fatalf("got %d detections, want 1", len(smoothed))
	}

	// Under-populated group: the best member passes through unmodified.
	if smoothed[0] != best {
		t.Errorf("got %+v, want the unmodified best detection", smoothed[0])
	}
}

func TestSmoother_LabelsNeverAltered(t *testing.T) {
	detections := []Detection{
		sample("person", 0, 0.8, Box{X: 100, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.9, Box{X: 105, Y: 100, W: 50, H: 100}),
		sample("person", 0, 0.7, Box{X: 95, Y: 100, W: 50, H: 100}),
	}

	for _, det := range testSmoother().Smooth(detections) {
		if det.Label != "person" {
			t.Errorf("label altered during smoothing: %q", det.Label)
		}
	}
}
