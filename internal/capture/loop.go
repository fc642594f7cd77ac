package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aulavista/facemark/internal/domain"
)

// DefaultSampleInterval is the recognition loop's frame sampling cadence.
const DefaultSampleInterval = 500 * time.Millisecond

// MatchFunc resolves one confirmed descriptor against a roster. The loop
// treats a NoMatch result as a signal to keep sampling.
type MatchFunc func(ctx context.Context, probe domain.Descriptor) (domain.MatchResult, error)

// LoopConfig tunes the recognition loop.
type LoopConfig struct {
	// Interval is the frame sampling cadence. Zero means DefaultSampleInterval.
	Interval time.Duration

	// MaxAttempts bounds how many captured descriptors are matched before
	// the loop gives up with a NoMatch. Zero means unbounded, matching the
	// historical behavior of the capture UI.
	MaxAttempts int
}

// Loop runs live recognition against one capture session: an explicit frame
// producer feeds a bounded queue, and a single consumer extracts and matches
// at most one frame at a time. Frames arriving while a match is in flight
// are dropped, so capture cadence stays decoupled from matching latency.
type Loop struct {
	session *Session
	match   MatchFunc
	cfg     LoopConfig
	logger  *slog.Logger
}

// NewLoop builds a recognition loop over an un-started session.
func NewLoop(session *Session, match MatchFunc, cfg LoopConfig, logger *slog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSampleInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		session: session,
		match:   match,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run drives the session until a roster identity is matched, the attempt
// budget is exhausted (NoMatch, nil), or ctx is cancelled. The camera is
// released on every exit path.
func (l *Loop) Run(ctx context.Context) (domain.MatchResult, error) {
	if err := l.session.Start(ctx); err != nil {
		return domain.NoMatch(), err
	}
	defer l.session.Teardown()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Bounded queue: at most one frame waits while the consumer works.
	frames := make(chan Frame, 1)
	go l.produce(loopCtx, frames)

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return domain.NoMatch(), ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return domain.NoMatch(), ErrTornDown
			}

			result, matched, err := l.attempt(ctx, frame)
			if err != nil {
				if errors.Is(err, ErrTornDown) {
					return domain.NoMatch(), err
				}
				l.logger.Warn("recognition attempt failed", slog.Any("error", err))
				continue
			}
			if !matched {
				continue
			}

			if result.Matched {
				return result, nil
			}

			attempts++
			if l.cfg.MaxAttempts > 0 && attempts >= l.cfg.MaxAttempts {
				l.logger.Info("recognition attempts exhausted",
					slog.Int("attempts", attempts),
				)
				return domain.NoMatch(), nil
			}
		}
	}
}

// produce samples frames on a fixed cadence. A frame is dropped when the
// queue is full, i.e. while the previous frame's extraction or match is
// still in flight.
func (l *Loop) produce(ctx context.Context, frames chan<- Frame) {
	defer close(frames)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := l.session.ReadFrame(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrTornDown) {
					l.logger.Warn("read frame failed", slog.Any("error", err))
				}
				return
			}

			select {
			case frames <- frame:
			default:
				l.logger.Debug("frame dropped, match in flight")
			}
		}
	}
}

// attempt runs one frame through detect -> capture -> confirm -> match.
// matched reports whether a descriptor was produced at all; a frame with no
// usable detection keeps the machine in Detecting and is not an attempt.
func (l *Loop) attempt(ctx context.Context, frame Frame) (domain.MatchResult, bool, error) {
	detected, err := l.session.Observe(ctx, frame)
	if err != nil {
		return domain.NoMatch(), false, err
	}
	if !detected {
		return domain.NoMatch(), false, nil
	}

	if _, err := l.session.Capture(); err != nil {
		return domain.NoMatch(), false, err
	}

	// Live recognition accepts automatically; the detection floor already
	// gated this descriptor.
	probe, err := l.session.Confirm()
	if err != nil {
		return domain.NoMatch(), false, err
	}

	result, err := l.match(ctx, probe)
	if err != nil {
		// The descriptor was consumed; resume detection for the next frame.
		l.resume()
		return domain.NoMatch(), false, err
	}

	if !result.Matched {
		l.resume()
	}

	return result, true, nil
}

// resume moves Confirmed back into Detecting for the next sample. The
// confirmed descriptor has already been handed to the matcher, so the
// machine re-enters detection through a fresh internal cycle.
func (l *Loop) resume() {
	l.session.resumeDetection()
}
