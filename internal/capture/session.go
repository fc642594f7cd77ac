// Package capture drives one client-side capture interaction from camera
// acquisition to a confirmed descriptor, independent of registration vs.
// recognition use.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aulavista/facemark/internal/domain"
	"github.com/aulavista/facemark/internal/provider"
)

// DefaultDetectionFloor is the minimum per-frame detection score for a face
// to count as a usable detection.
const DefaultDetectionFloor = 0.5

var (
	ErrInvalidTransition  = errors.New("invalid capture state transition")
	ErrTornDown           = errors.New("capture session torn down")
	ErrExtractionInFlight = errors.New("previous frame extraction still in flight")
)

// State is the capture machine's position in its lifecycle.
type State int

const (
	// StateLoading is the pre-Idle condition while the embedding provider's
	// model assets load. Distinct from a camera failure.
	StateLoading State = iota
	StateIdle
	StateDetecting
	StateFaceDetected
	StateCaptured
	StateConfirmed
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateFaceDetected:
		return "face_detected"
	case StateCaptured:
		return "captured"
	case StateConfirmed:
		return "confirmed"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Session owns one capture interaction. Transitions are strictly
// sequential; methods report ErrInvalidTransition when called out of order.
// A session is not meant for parallel captures against one camera, but its
// methods are safe to call from the teardown path concurrently with an
// in-flight Observe: extraction results landing after teardown are
// discarded, never handed downstream.
type Session struct {
	camera   Camera
	provider provider.EmbeddingProvider
	floor    float64
	logger   *slog.Logger

	mu         sync.Mutex
	state      State
	stream     Stream
	gen        uint64
	observing  bool
	pending    provider.DetectedFace
	descriptor domain.Descriptor
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDetectionFloor overrides the per-frame detection score floor.
func WithDetectionFloor(floor float64) SessionOption {
	return func(s *Session) {
		s.floor = floor
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session in Idle, or in Loading when the provider's
// model assets are not ready yet.
func NewSession(camera Camera, p provider.EmbeddingProvider, opts ...SessionOption) *Session {
	s := &Session{
		camera:   camera,
		provider: p,
		floor:    DefaultDetectionFloor,
		logger:   slog.Default(),
		state:    StateIdle,
	}
	if !p.Ready() {
		s.state = StateLoading
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start acquires the camera and moves Idle -> Detecting. While the provider
// is still loading it fails with ErrModelsNotLoaded and stays put; a denied
// or absent camera fails with ErrCameraUnavailable.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateLoading {
		if !s.provider.Ready() {
			s.mu.Unlock()
			return domain.ErrModelsNotLoaded
		}
		s.state = StateIdle
	}
	if s.state != StateIdle {
		from := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> detecting", ErrInvalidTransition, from)
	}
	gen := s.gen
	s.mu.Unlock()

	// Acquisition can block; done outside the lock so teardown stays
	// responsive.
	stream, err := s.camera.Acquire(ctx)
	if err != nil {
		return domain.ErrCameraUnavailable.WithError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Torn down while acquiring; release immediately.
		stream.Stop()
		return ErrTornDown
	}

	s.stream = stream
	s.state = StateDetecting
	return nil
}

// ReadFrame pulls the next frame from the acquired stream.
func (s *Session) ReadFrame(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return Frame{}, ErrTornDown
	}
	return stream.Next(ctx)
}

// Observe feeds one frame to the embedding provider and reports whether the
// machine advanced to FaceDetected. The machine stays in Detecting when the
// frame holds zero faces, more than one face (ambiguous; never match or
// register an accidental second face), or a single face below the detection
// floor.
//
// Observe is re-entrancy guarded: a call while the previous frame's
// extraction is outstanding fails with ErrExtractionInFlight. Results that
// arrive after teardown are discarded.
func (s *Session) Observe(ctx context.Context, frame Frame) (bool, error) {
	s.mu.Lock()
	if s.state != StateDetecting {
		from := s.state
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s -> face_detected", ErrInvalidTransition, from)
	}
	if s.observing {
		s.mu.Unlock()
		return false, ErrExtractionInFlight
	}
	s.observing = true
	gen := s.gen
	s.mu.Unlock()

	faces, err := s.provider.DetectFaces(ctx, frame.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.observing = false

	if s.gen != gen {
		// Torn down while the extraction was in flight.
		return false, ErrTornDown
	}
	if err != nil {
		return false, fmt.Errorf("detect faces: %w", err)
	}

	if len(faces) != 1 {
		s.logger.Debug("no usable detection",
			slog.Int("faces", len(faces)),
		)
		return false, nil
	}
	if faces[0].Score < s.floor {
		s.logger.Debug("detection below floor",
			slog.Float64("score", faces[0].Score),
			slog.Float64("floor", s.floor),
		)
		return false, nil
	}

	s.pending = faces[0]
	s.state = StateFaceDetected
	return true, nil
}

// Capture produces exactly one descriptor from the detected face and moves
// FaceDetected -> Captured. The trigger is a user action in registration
// and the per-tick sampler in live recognition.
func (s *Session) Capture() (domain.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFaceDetected {
		return nil, fmt.Errorf("%w: %s -> captured", ErrInvalidTransition, s.state)
	}

	d := make(domain.Descriptor, len(s.pending.Descriptor))
	copy(d, s.pending.Descriptor)

	s.descriptor = d
	s.state = StateCaptured
	return d, nil
}

// Confirm accepts the captured descriptor for downstream use: explicit user
// confirmation in the registration flow, immediate in recognition.
func (s *Session) Confirm() (domain.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured {
		return nil, fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, s.state)
	}

	s.state = StateConfirmed
	return s.descriptor, nil
}

// Retry discards the captured descriptor and resumes detection, used after
// a user-initiated retake or a no-match recognition attempt.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured {
		return fmt.Errorf("%w: %s -> detecting", ErrInvalidTransition, s.state)
	}

	s.descriptor = nil
	s.pending = provider.DetectedFace{}
	s.state = StateDetecting
	return nil
}

// Discard rejects the captured descriptor without resuming detection.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured {
		return fmt.Errorf("%w: %s -> discarded", ErrInvalidTransition, s.state)
	}

	s.descriptor = nil
	s.pending = provider.DetectedFace{}
	s.state = StateDiscarded
	return nil
}

// resumeDetection returns a confirmed recognition session to Detecting so
// the loop can sample the next frame. No-op unless the stream is live.
func (s *Session) resumeDetection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConfirmed && s.stream != nil {
		s.descriptor = nil
		s.pending = provider.DetectedFace{}
		s.state = StateDetecting
	}
}

// Teardown releases the camera and returns the machine to Idle from any
// state. The stream is stopped synchronously before Teardown returns, and
// any in-flight extraction result is invalidated.
func (s *Session) Teardown() {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.gen++
	s.descriptor = nil
	s.pending = provider.DetectedFace{}
	if s.provider.Ready() {
		s.state = StateIdle
	} else {
		s.state = StateLoading
	}
	s.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
}
