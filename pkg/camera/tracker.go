package camera

import (
	"sync"
	"time"

	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/pkg/detection"
	"github.com/teslashibe/go-panscan/pkg/scan"
)

// FrameSource supplies JPEG frames to the acquisition loop.
type FrameSource interface {
	// Read returns the next frame as JPEG bytes.
	Read() ([]byte, error)

	// Close releases the capture device.
	Close() error
}

// TrackedInfo is one store entry with its tracking history.
type TrackedInfo struct {
	scan.TrackedObject
	Seen     int       `json:"seen"`
	LastSeen time.Time `json:"last_seen"`
}

// trackedEntry is the mutable store record behind one TrackedInfo.
type trackedEntry struct {
	object   scan.TrackedObject
	seen     int
	lastSeen time.Time
}

// Tracker runs a background acquisition loop over a frame source and an
// object detector, and maintains the tracked-object store the scanner
// samples. Fresh detections update existing entries when they overlap an
// entry of the same label; entries not re-detected within StaleAfter are
// evicted.
type Tracker struct {
	cfg      Config
	source   FrameSource
	detector detection.Detector

	mu      sync.RWMutex
	entries []*trackedEntry
	lastErr error
	running bool
	stop    chan struct{}
	done    chan struct{}
}

var _ scan.Camera = (*Tracker)(nil)

// NewTracker creates a tracker over the given source and detector. The
// tracker owns the source once Start succeeds; Stop closes it.
func NewTracker(source FrameSource, detector detection.Detector, cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{
		cfg:      cfg,
		source:   source,
		detector: detector,
	}, nil
}

// Start launches the acquisition loop. Safe to call on a running tracker.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.loop(t.stop, t.done)

	log.Info("camera tracker started", "interval", t.cfg.Interval, "min_score", t.cfg.MinScore)
	return nil
}

// Stop halts acquisition and releases the capture device.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done

	if err := t.source.Close(); err != nil {
		log.Warn("closing frame source", "error", err)
	}
}

// TrackedObjects returns a snapshot of the store. When the most recent
// acquisition cycle failed, the snapshot is returned together with that
// error so callers can decide whether to trust it.
func (t *Tracker) TrackedObjects() ([]scan.TrackedObject, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]scan.TrackedObject, 0, len(t.entries))
	for _, entry := range t.entries {
		snapshot = append(snapshot, entry.object)
	}
	return snapshot, t.lastErr
}

// Tracked returns the store entries with their tracking history.
func (t *Tracker) Tracked() []TrackedInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	infos := make([]TrackedInfo, 0, len(t.entries))
	for _, entry := range t.entries {
		infos = append(infos, TrackedInfo{
			TrackedObject: entry.object,
			Seen:          entry.seen,
			LastSeen:      entry.lastSeen,
		})
	}
	return infos
}

// ClearTrackedObjects drops the store so the next snapshot only contains
// objects detected after the call.
func (t *Tracker) ClearTrackedObjects() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

func (t *Tracker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.cycle()
		}
	}
}

// cycle runs one read-detect-update pass. A failed cycle records the
// error for the next snapshot and leaves the store untouched.
func (t *Tracker) cycle() {
	frame, err := t.source.Read()
	if err != nil {
		t.setErr(err)
		return
	}

	objects, err := t.detector.Detect(frame)
	if err != nil {
		t.setErr(err)
		return
	}

	t.update(objects, time.Now())
}

func (t *Tracker) setErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = err
}

// update folds one detection batch into the store.
func (t *Tracker) update(objects []detection.Object, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = nil

	matched := make(map[*trackedEntry]bool)
	for _, obj := range objects {
		if obj.Score < t.cfg.MinScore {
			continue
		}

		box := scan.Box{X: obj.X, Y: obj.Y, W: obj.W, H: obj.H}
		entry := t.associate(obj.Label, box, matched)
		if entry == nil {
			entry = &trackedEntry{
				object: scan.TrackedObject{Label: obj.Label, Score: obj.Score, Box: box},
			}
			t.entries = append(t.entries, entry)
		} else {
			entry.object.Box = box
			entry.object.Score = obj.Score
		}
		entry.seen++
		entry.lastSeen = now
		matched[entry] = true
	}

	// Evict entries that have gone stale.
	kept := t.entries[:0]
	for _, entry := range t.entries {
		if now.Sub(entry.lastSeen) <= t.cfg.StaleAfter {
			kept = append(kept, entry)
		}
	}
	t.entries = kept
}

// associate finds the best unmatched same-label entry overlapping the
// box, or nil when the detection is a new object.
func (t *Tracker) associate(label string, box scan.Box, matched map[*trackedEntry]bool) *trackedEntry {
	var best *trackedEntry
	bestIoU := t.cfg.MatchIoU
	for _, entry := range t.entries {
		if matched[entry] || entry.object.Label != label {
			continue
		}
		if overlap := scan.IoU(entry.object.Box, box); overlap >= bestIoU {
			best = entry
			bestIoU = overlap
		}
	}
	return best
}
