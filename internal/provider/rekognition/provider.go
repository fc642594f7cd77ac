package rekognition

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/aulavista/facemark/internal/domain"
	"github.com/aulavista/facemark/internal/provider"
)

const (
	// maxFrameSize is the maximum image size supported by AWS Rekognition (5MB)
	maxFrameSize = 5 * 1024 * 1024
	// minFrameSize is the minimum frame size for valid processing
	minFrameSize = 100
)

// Provider implements provider.EmbeddingProvider using AWS Rekognition.
//
// Rekognition does not expose its internal face embeddings, so descriptors
// are derived from the detected landmark geometry normalized to the face
// bounding box. The geometry vector is coarser than a learned embedding but
// stable for the same face across frames, which is enough for class-sized
// rosters.
type Provider struct {
	client *Client
	ready  atomic.Bool
}

// Ensure Provider implements provider.EmbeddingProvider at compile time
var _ provider.EmbeddingProvider = (*Provider)(nil)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client}, nil
}

// Load verifies Rekognition is reachable with the configured credentials and
// marks the provider ready. Idempotent on success.
func (p *Provider) Load(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}

	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("load rekognition provider: %w", err)
	}

	p.ready.Store(true)
	return nil
}

// Ready reports whether Load completed successfully
func (p *Provider) Ready() bool {
	return p.ready.Load()
}

// DetectFaces detects faces in a frame using the Rekognition DetectFaces API.
// Detections below the configured minimum confidence are dropped before they
// reach the caller. Returns an empty slice when no faces are found.
func (p *Provider) DetectFaces(ctx context.Context, frame []byte) ([]provider.DetectedFace, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	details, err := p.client.DetectFaces(ctx, frame)
	if err != nil {
		return nil, err
	}

	faces := make([]provider.DetectedFace, 0, len(details))
	for _, detail := range details {
		if detail.Confidence == nil || *detail.Confidence < p.client.config.MinConfidence {
			continue
		}

		face := provider.DetectedFace{
			Descriptor: geometryDescriptor(detail),
			Score:      float64(*detail.Confidence) / 100,
		}
		if detail.BoundingBox != nil {
			face.BoundingBox = provider.BoundingBox{
				X:      float64(deref(detail.BoundingBox.Left)),
				Y:      float64(deref(detail.BoundingBox.Top)),
				Width:  float64(deref(detail.BoundingBox.Width)),
				Height: float64(deref(detail.BoundingBox.Height)),
			}
		}

		faces = append(faces, face)
	}

	return faces, nil
}

// validateFrame checks if frame data is valid for Rekognition processing
func validateFrame(frame []byte) error {
	if len(frame) < minFrameSize {
		return fmt.Errorf("%w: frame too small (%d bytes, minimum %d)", ErrInvalidFrame, len(frame), minFrameSize)
	}
	if len(frame) > maxFrameSize {
		return fmt.Errorf("%w: frame too large (%d bytes, maximum %d)", ErrInvalidFrame, len(frame), maxFrameSize)
	}
	return nil
}

// geometryDescriptor flattens the face's landmark coordinates, normalized to
// the bounding box, into a fixed-length L2-normalized vector.
func geometryDescriptor(detail types.FaceDetail) []float64 {
	d := make([]float64, domain.DescriptorDim)
	if detail.BoundingBox == nil || len(detail.Landmarks) == 0 {
		return d
	}

	left := float64(deref(detail.BoundingBox.Left))
	top := float64(deref(detail.BoundingBox.Top))
	width := float64(deref(detail.BoundingBox.Width))
	height := float64(deref(detail.BoundingBox.Height))
	if width <= 0 || height <= 0 {
		return d
	}

	i := 0
	for _, lm := range detail.Landmarks {
		if i+1 >= len(d) {
			break
		}
		if lm.X == nil || lm.Y == nil {
			continue
		}
		d[i] = (float64(*lm.X) - left) / width
		d[i+1] = (float64(*lm.Y) - top) / height
		i += 2
	}

	norm := 0.0
	for _, v := range d {
		norm += v * v
	}
	if norm == 0 {
		return d
	}
	norm = math.Sqrt(norm)
	for j := range d {
		d[j] /= norm
	}

	return d
}

func deref(v *float32) float32 {
	if v == nil {
		return 0
	}
	return *v
}
