package capture

import (
	"context"
	"image"
	"sync"
	"time"

	"faceattend/internal/geo"
	"faceattend/internal/logger"
)

// State is the capture session lifecycle state.
type State string

const (
	StateClosed          State = "closed"
	StateLocationPending State = "location_pending"
	StateLocationDenied  State = "location_denied"
	StateModelsLoading   State = "models_loading"
	StateSampling        State = "sampling"
)

// FaceDetector classifies frames for face presence.
type FaceDetector interface {
	Ready() bool
	DetectFaces(frame []byte) ([]image.Rectangle, error)
}

// Sender submits a detected frame to the attendance backend. Submissions run
// detached from the sampling loop; completion is observed only via logging.
type Sender interface {
	Submit(ctx context.Context, frame []byte)
}

// Status is a snapshot of the session state.
type Status struct {
	State           State      `json:"state"`
	LocationAllowed bool       `json:"location_allowed"`
	ModelsLoaded    bool       `json:"models_loaded"`
	FaceDetected    bool       `json:"face_detected"`
	Coordinates     *geo.Point `json:"coordinates,omitempty"`
}

// Session runs one capture attempt: a one-shot geofence check, then a
// fixed-interval sampling loop that classifies frames and submits positives.
type Session struct {
	locator  geo.Locator
	fence    geo.Geofence
	source   FrameSource
	detector FaceDetector
	sender   Sender
	interval time.Duration
	logger   *logger.Logger

	mu              sync.Mutex
	state           State
	locationAllowed bool
	faceDetected    bool
	coords          *geo.Point
	inFlight        bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession creates a session in the closed state.
func NewSession(locator geo.Locator, fence geo.Geofence, source FrameSource, detector FaceDetector, sender Sender, interval time.Duration, logger *logger.Logger) *Session {
	return &Session{
		locator:  locator,
		fence:    fence,
		source:   source,
		detector: detector,
		sender:   sender,
		interval: interval,
		logger:   logger,
		state:    StateClosed,
		done:     make(chan struct{}),
	}
}

// Open resolves the device position once and, if it falls inside the fence,
// starts the sampling loop. A position failure or an out-of-range position
// only gates the session; it is never fatal and is not retried until the
// session is reopened.
func (s *Session) Open(ctx context.Context) {
	s.setState(StateLocationPending)

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warning("Could not resolve position: %v", err)
		s.setState(StateLocationDenied)
		return
	}

	s.mu.Lock()
	s.coords = &pos
	s.mu.Unlock()

	if !s.fence.Contains(pos) {
		s.logger.Warning("Position is %.3f km from the allowed location (radius %.3f km)",
			geo.Distance(s.fence.Center, pos), s.fence.RadiusKm)
		s.setState(StateLocationDenied)
		return
	}

	s.mu.Lock()
	s.locationAllowed = true
	if s.detector.Ready() {
		s.state = StateSampling
	} else {
		s.state = StateModelsLoading
	}
	s.mu.Unlock()

	s.logger.Info("Location allowed, sampling every %v", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// run drives the detection ticker until the session is closed.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one sampling interval. Ticks are skipped while the detector model
// is not ready, while the frame source is not ready, and while a previous
// classification is still in flight (skipped, never queued).
func (s *Session) tick(ctx context.Context) {
	if !s.detector.Ready() {
		s.setState(StateModelsLoading)
		return
	}
	s.setState(StateSampling)

	if !s.source.Ready() {
		return
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.classify(ctx)
}

// classify grabs the current frame, runs detection, and hands positives to
// the sender without waiting for the submission to finish.
func (s *Session) classify(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	frame, err := s.source.Grab()
	if err != nil {
		s.logger.Warning("Could not grab frame: %v", err)
		return
	}

	faces, err := s.detector.DetectFaces(frame)
	if err != nil {
		s.logger.Error("Classification failed: %v", err)
		return
	}

	s.mu.Lock()
	s.faceDetected = len(faces) > 0
	s.mu.Unlock()

	if len(faces) > 0 {
		s.logger.Info("Face detected (%d)", len(faces))
		go s.sender.Submit(ctx, frame)
	}
}

// Close tears the session down. All timers stop and no further classification
// runs after Close returns. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.setState(StateClosed)
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:           s.state,
		LocationAllowed: s.locationAllowed,
		ModelsLoaded:    s.detector.Ready(),
		FaceDetected:    s.faceDetected,
		Coordinates:     s.coords,
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
