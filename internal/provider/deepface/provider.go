package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/aulavista/facemark/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for score scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.EmbeddingProvider using the DeepFace API.
// The model runs inside the DeepFace service; Load warms it with one ping
// so the first real frame does not pay the model download cost.
type Provider struct {
	client *Client
	ready  atomic.Bool
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Load pings the DeepFace service and marks the provider ready. Idempotent
// on success.
func (p *Provider) Load(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}

	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("load deepface provider: %w", err)
	}

	p.ready.Store(true)
	return nil
}

// Ready reports whether Load completed successfully
func (p *Provider) Ready() bool {
	return p.ready.Load()
}

// DetectFaces extracts one embedding per face found in the frame
func (p *Provider) DetectFaces(ctx context.Context, frame []byte) ([]provider.DetectedFace, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(frame)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		// DeepFace doesn't return a detection confidence, so we estimate one
		// from face area: larger faces are more reliable detections.
		faceArea := float64(result.FacialArea.W * result.FacialArea.H)

		faces = append(faces, provider.DetectedFace{
			Descriptor: result.Embedding,
			Score:      calculateScore(faceArea),
			BoundingBox: provider.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
		})
	}

	return faces, nil
}

// calculateScore estimates detection confidence based on face area
// Scales from 0.7 to 0.99; very small faces get a flat 0.5
func calculateScore(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

// Ensure Provider implements provider.EmbeddingProvider
var _ provider.EmbeddingProvider = (*Provider)(nil)
