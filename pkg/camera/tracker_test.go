package camera

import (
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-panscan/pkg/detection"
)

// fakeSource returns a canned frame forever.
type fakeSource struct {
	err    error
	closed bool
}

func (f *fakeSource) Read() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xff, 0xd8}, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeDetector returns a fixed object set.
type fakeDetector struct {
	objects []detection.Object
	err     error
}

func (f *fakeDetector) Detect([]byte) ([]detection.Object, error) {
	return f.objects, f.err
}

func (f *fakeDetector) Close() error { return nil }

func testTrackerConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = time.Millisecond
	return cfg
}

func newTracker(t *testing.T, source FrameSource, det detection.Detector) *Tracker {
	t.Helper()
	tracker, err := NewTracker(source, det, testTrackerConfig())
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tracker
}

func TestTracker_UpdateAndSnapshot(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})
	now := time.Now()

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.9, X: 100, Y: 100, W: 50, H: 100},
		{Label: "person", Score: 0.8, X: 400, Y: 50, W: 60, H: 200},
	}, now)

	objects, err := tracker.TrackedObjects()
	if err != nil {
		t.Fatalf("TrackedObjects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(objects))
	}

	// Snapshots are copies: mutating one must not affect the store.
	objects[0].Label = "mutated"
	again, _ := tracker.TrackedObjects()
	if again[0].Label == "mutated" {
		t.Error("snapshot shares memory with the store")
	}
}

func TestTracker_AssociationUpdatesEntry(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})
	now := time.Now()

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.7, X: 100, Y: 100, W: 50, H: 100},
	}, now)
	// Overlapping same-label detection updates in place.
	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.9, X: 105, Y: 102, W: 50, H: 100},
	}, now.Add(time.Millisecond))

	infos := tracker.Tracked()
	if len(infos) != 1 {
		t.Fatalf("got %d entries, want 1", len(infos))
	}
	if infos[0].Seen != 2 {
		t.Errorf("seen count %d, want 2", infos[0].Seen)
	}
	if infos[0].Score != 0.9 {
		t.Errorf("score not refreshed: %v", infos[0].Score)
	}
	if infos[0].Box.X != 105 {
		t.Errorf("box not refreshed: %+v", infos[0].Box)
	}
}

func TestTracker_DifferentLabelsNeverAssociate(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})
	now := time.Now()

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.7, X: 100, Y: 100, W: 50, H: 100},
	}, now)
	tracker.update([]detection.Object{
		{Label: "couch", Score: 0.9, X: 100, Y: 100, W: 50, H: 100},
	}, now)

	if got := len(tracker.Tracked()); got != 2 {
		t.Errorf("got %d entries, want 2", got)
	}
}

func TestTracker_MinScoreFilter(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.1, X: 100, Y: 100, W: 50, H: 100},
	}, time.Now())

	if got, _ := tracker.TrackedObjects(); len(got) != 0 {
		t.Errorf("low-score detection entered the store: %v", got)
	}
}

func TestTracker_StaleEviction(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})
	start := time.Now()

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.9, X: 100, Y: 100, W: 50, H: 100},
	}, start)
	// A later batch with a different object, past the stale window.
	tracker.update([]detection.Object{
		{Label: "person", Score: 0.9, X: 600, Y: 50, W: 60, H: 200},
	}, start.Add(testTrackerConfig().StaleAfter+time.Second))

	objects, _ := tracker.TrackedObjects()
	if len(objects) != 1 {
		t.Fatalf("got %d objects, want 1 after eviction", len(objects))
	}
	if objects[0].Label != "person" {
		t.Errorf("stale entry survived: %v", objects[0])
	}
}

func TestTracker_Clear(t *testing.T) {
	tracker := newTracker(t, &fakeSource{}, &fakeDetector{})

	tracker.update([]detection.Object{
		{Label: "chair", Score: 0.9, X: 100, Y: 100, W: 50, H: 100},
	}, time.Now())
	tracker.ClearTrackedObjects()

	if got, _ := tracker.TrackedObjects(); len(got) != 0 {
		t.Errorf("store not empty after clear: %v", got)
	}
}

func TestTracker_ReportsCycleError(t *testing.T) {
	source := &fakeSource{}
	tracker := newTracker(t, source, &fakeDetector{})

	readFault := errors.New("device busy")
	source.err = readFault
	tracker.cycle()

	if _, err := tracker.TrackedObjects(); !errors.Is(err, readFault) {
		t.Errorf("snapshot error = %v, want the cycle error", err)
	}

	// A successful cycle clears the sticky error.
	source.err = nil
	tracker.cycle()
	if _, err := tracker.TrackedObjects(); err != nil {
		t.Errorf("error not cleared after recovery: %v", err)
	}
}

func TestTracker_StartStop(t *testing.T) {
	source := &fakeSource{}
	det := &fakeDetector{objects: []detection.Object{
		{Label: "chair", Score: 0.9, X: 100, Y: 100, W: 50, H: 100},
	}}
	tracker := newTracker(t, source, det)

	if err := tracker.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second start on a running tracker is a no-op.
	if err := tracker.Start(); err != nil {
		t.Fatalf("Start again: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		objects, err := tracker.TrackedObjects()
		if err == nil && len(objects) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("acquisition loop never populated the store")
		case <-time.After(time.Millisecond):
		}
	}

	tracker.Stop()
	if !source.closed {
		t.Error("Stop did not close the frame source")
	}
	// Stop on a stopped tracker is a no-op.
	tracker.Stop()
}
