package scan

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-panscan/internal/log"
)

// State is the orchestrator's position in the scan lifecycle.
type State int32

const (
	StateIdle State = iota
	StateMoving
	StateSettling
	StateCapturing
	StateDeduplicating
	StateDone
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateSettling:
		return "settling"
	case StateCapturing:
		return "capturing"
	case StateDeduplicating:
		return "deduplicating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// smoothMoveSpeed is the interpolation speed handed to controllers that
// support smooth moves.
const smoothMoveSpeed = 1.0

// Progress is one orchestrator state transition, emitted to observers.
type Progress struct {
	ScanID        string  `json:"scan_id"`
	State         string  `json:"state"`
	PositionIndex int     `json:"position_index"`
	PositionCount int     `json:"position_count"`
	PanAngle      float64 `json:"pan_angle"`
	Detections    int     `json:"detections"`
}

// Scanner drives the sweep: it asks the planner for positions, moves the
// servos, captures detections at each stop, and runs the smoothing and
// deduplication stages over the accumulated pool.
//
// At most one scan may be in flight per Scanner; a concurrent second
// start fails with ErrScanInFlight rather than queueing. The camera and
// servo collaborators are process-wide singletons shared with other
// subsystems; the scanner claims no ownership beyond that rule.
type Scanner struct {
	cfg       Config
	projector Projector
	smoother  Smoother
	dedup     *Deduplicator

	camera Camera
	servos ServoController

	inFlight atomic.Bool
	state    atomic.Int32

	mu         sync.RWMutex
	lastResult *Result

	// OnProgress, when set, observes every state transition. It is called
	// from the scanning goroutine and must not block.
	OnProgress func(Progress)
}

// New creates a Scanner. Both configurations are validated here, before
// any hardware is touched; invalid parameters are never retried.
func New(camera Camera, servos ServoController, cfg Config, dedupCfg DedupConfig) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dedup, err := NewDeduplicator(dedupCfg)
	if err != nil {
		return nil, err
	}

	projector := cfg.Projector()
	return &Scanner{
		cfg:       cfg,
		projector: projector,
		smoother:  Smoother{MinFrames: dedupCfg.MinFrames, Projector: projector},
		dedup:     dedup,
		camera:    camera,
		servos:    servos,
	}, nil
}

// Config returns the scan configuration.
func (s *Scanner) Config() Config {
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	return State(s.state.Load())
}

// LastResult returns the most recent completed result, or nil.
func (s *Scanner) LastResult() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// Scan performs one blocking sweep. On cancellation or a hardware failure
// mid-sweep the remaining positions are abandoned, deduplication still
// runs over whatever was captured, a best-effort return to center is
// attempted, and the partial result is returned alongside the error.
// Only when no position was ever captured is the result nil.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	return s.runScan(ctx, s.emitFunc(nil))
}

// Session is a handle to one cooperative (non-blocking) scan.
type Session struct {
	events chan Progress
	done   chan struct{}

	mu     sync.Mutex
	result *Result
	err    error
}

// Events streams progress updates. The channel is closed when the scan
// finishes. Slow consumers miss updates rather than stalling the sweep.
func (s *Session) Events() <-chan Progress {
	return s.events
}

// Done is closed when the scan has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the scan outcome. Valid once Done is closed.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Wait blocks until the scan finishes or ctx is cancelled. Cancelling the
// wait does not cancel the scan; cancel the context passed to Start for
// that.
func (s *Session) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-s.done:
		return s.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start launches a cooperative scan and returns immediately. The session
// runs the same internal loop as Scan, so position ordering and results
// are identical in both modes.
func (s *Scanner) Start(ctx context.Context) (*Session, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}

	session := &Session{
		events: make(chan Progress, 32),
		done:   make(chan struct{}),
	}

	go func() {
		defer s.inFlight.Store(false)

		result, err := s.runScan(ctx, s.emitFunc(session))

		session.mu.Lock()
		session.result = result
		session.err = err
		session.mu.Unlock()

		close(session.events)
		close(session.done)
	}()

	return session, nil
}

// emitFunc builds the progress sink for one run: the optional session
// channel plus the scanner-level OnProgress observer. Sends never block;
// a full session channel drops the update.
func (s *Scanner) emitFunc(session *Session) func(Progress) {
	return func(p Progress) {
		if s.OnProgress != nil {
			s.OnProgress(p)
		}
		if session == nil {
			return
		}
		select {
		case session.events <- p:
		default:
		}
	}
}

// runScan is the single implementation behind both execution modes.
func (s *Scanner) runScan(ctx context.Context, emit func(Progress)) (*Result, error) {
	positions, err := s.cfg.Positions()
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, ErrNoPositions
	}

	if err := s.camera.Start(); err != nil {
		return nil, &HardwareError{Op: "start camera", Err: err}
	}

	result := &Result{
		ID:        uuid.NewString(),
		Positions: positions,
		Started:   time.Now(),
	}
	logger := log.With("scan_id", result.ID)
	logger.Info("starting scan", "positions", len(positions), "tilt", s.cfg.ScanTilt)

	progress := func(state State, index int, pan float64, detections int) {
		s.state.Store(int32(state))
		emit(Progress{
			ScanID:        result.ID,
			State:         state.String(),
			PositionIndex: index,
			PositionCount: len(positions),
			PanAngle:      pan,
			Detections:    detections,
		})
	}

	var pool []Detection
	var scanErr error
	captured := 0

	for i, pan := range positions {
		logger.Info("scanning position", "index", i, "pan", pan)

		progress(StateMoving, i, pan, len(pool))
		if err := s.moveTo(pan, s.cfg.ScanTilt); err != nil {
			scanErr = &HardwareError{Op: "move to position", Err: err}
			break
		}

		progress(StateSettling, i, pan, len(pool))
		if err := sleepCtx(ctx, s.cfg.SettlingTime); err != nil {
			scanErr = err
			break
		}

		// Drop stale tracking state so this position only sees objects
		// actually in its field of view, then let fresh detections build.
		s.camera.ClearTrackedObjects()
		if err := sleepCtx(ctx, s.cfg.RefreshDelay); err != nil {
			scanErr = err
			break
		}

		progress(StateCapturing, i, pan, len(pool))
		detections, err := s.capturePosition(ctx, i, pan)
		pool = append(pool, detections...)
		captured++
		logger.Debug("position captured", "index", i, "detections", len(detections))
		if err != nil {
			scanErr = err
			break
		}
	}

	if scanErr != nil && captured == 0 {
		s.returnToCenter(logger)
		s.state.Store(int32(StateIdle))
		return nil, scanErr
	}

	// The deduplication stage is pure and in-memory: it runs to completion
	// even for an interrupted sweep so partial captures are never lost.
	progress(StateDeduplicating, len(positions), s.cfg.CenterPan, len(pool))
	result.RawDetections = len(pool)
	result.Objects = s.dedup.Deduplicate(s.smoother.Smooth(pool))

	s.returnToCenter(logger)

	result.Completed = time.Now()
	result.Interrupted = scanErr != nil
	progress(StateDone, len(positions), s.cfg.CenterPan, len(pool))

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	logger.Info("scan complete",
		"raw", result.RawDetections,
		"unique", len(result.Objects),
		"interrupted", result.Interrupted)

	return result, scanErr
}

// capturePosition polls the camera for the configured number of samples
// at an already-settled position. A single failed sample is logged and
// skipped, never escalated; detections below the confidence threshold are
// dropped (a score exactly at the threshold is kept).
func (s *Scanner) capturePosition(ctx context.Context, index int, pan float64) ([]Detection, error) {
	var detections []Detection

	for frame := 0; frame < s.cfg.FramesPerPosition; frame++ {
		objects, err := s.camera.TrackedObjects()
		if err != nil {
			log.Warn("capture sample failed", "position", index, "frame", frame, "error", err)
		} else {
			now := time.Now()
			for _, obj := range objects {
				if obj.Score < s.cfg.ConfidenceThreshold {
					continue
				}
				detections = append(detections, Detection{
					Label:         obj.Label,
					Confidence:    obj.Score,
					Box:           obj.Box,
					PanAngle:      pan,
					WorldAngle:    s.projector.Project(obj.Box, pan),
					PositionIndex: index,
					Timestamp:     now,
				})
			}
		}

		if err := sleepCtx(ctx, s.cfg.FrameDelay); err != nil {
			return detections, err
		}
	}

	return detections, nil
}

// moveTo commands pan and tilt, preferring interpolated moves when the
// controller supports them.
func (s *Scanner) moveTo(pan, tilt float64) error {
	if mover, ok := s.servos.(SmoothMover); ok {
		if err := mover.SmoothMoveToAngle(PanChannel, pan, smoothMoveSpeed); err != nil {
			return err
		}
		return mover.SmoothMoveToAngle(TiltChannel, tilt, smoothMoveSpeed)
	}

	if err := s.servos.SetServoAngle(PanChannel, pan); err != nil {
		return err
	}
	return s.servos.SetServoAngle(TiltChannel, tilt)
}

// returnToCenter is best effort: a failed center return is logged, never
// fatal, and never masks the scan outcome.
func (s *Scanner) returnToCenter(logger *slog.Logger) {
	if err := s.moveTo(s.cfg.CenterPan, s.cfg.CenterTilt); err != nil {
		logger.Warn("center return failed", "error", err)
	}
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
