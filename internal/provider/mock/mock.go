// Package mock provides a deterministic embedding provider for tests and
// local development, so the full recognition pipeline can run without a
// DeepFace service or AWS credentials.
package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"sync/atomic"

	"github.com/aulavista/facemark/internal/domain"
	"github.com/aulavista/facemark/internal/provider"
)

// minFrameBytes is the size below which a frame is treated as containing no
// face, mimicking a camera frame too small to carry one.
const minFrameBytes = 1000

// Provider implements provider.EmbeddingProvider with hash-derived
// descriptors: the same frame bytes always produce the same descriptor, and
// different frames produce descriptors far apart, so match/no-match cases
// are easy to stage.
type Provider struct {
	ready atomic.Bool
}

// New creates a mock provider
func New() *Provider {
	return &Provider{}
}

// Load marks the provider ready; there are no assets to fetch
func (p *Provider) Load(_ context.Context) error {
	p.ready.Store(true)
	return nil
}

// Ready reports whether Load was called
func (p *Provider) Ready() bool {
	return p.ready.Load()
}

// DetectFaces reports exactly one face for any frame large enough to carry
// one, with a descriptor derived from the frame's hash
func (p *Provider) DetectFaces(_ context.Context, frame []byte) ([]provider.DetectedFace, error) {
	if len(frame) < minFrameBytes {
		return nil, nil
	}

	return []provider.DetectedFace{
		{
			Descriptor: Descriptor(frame),
			Score:      0.99,
			BoundingBox: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
		},
	}, nil
}

// Descriptor derives a deterministic L2-normalized descriptor from frame
// bytes. Exported so tests can predict what DetectFaces will produce.
func Descriptor(frame []byte) []float64 {
	hash := sha256.Sum256(frame)
	descriptor := make([]float64, domain.DescriptorDim)
	hashLen := len(hash)

	for i := 0; i < domain.DescriptorDim; i++ {
		idx := i % hashLen
		descriptor[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range descriptor {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range descriptor {
		descriptor[i] /= norm
	}

	return descriptor
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
