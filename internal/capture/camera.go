package capture

import (
	"context"
	"time"
)

// Frame is one raw video frame handed to the embedding provider.
type Frame struct {
	Data []byte
	At   time.Time
}

// Camera is the platform binding for the capture device. Exactly one
// session owns the device at a time.
type Camera interface {
	// Acquire opens the camera and returns its frame stream. Acquisition
	// failures (permission denied, no device) are returned as-is and mapped
	// to ErrCameraUnavailable by the session.
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is an acquired camera feed.
//
// Stop releases every underlying media track synchronously and must be
// idempotent; the session relies on it for deterministic teardown on all
// exit paths, including error and cancellation.
type Stream interface {
	// Next blocks until the next frame is available or ctx is done.
	Next(ctx context.Context) (Frame, error)
	Stop()
}
