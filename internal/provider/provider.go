package provider

import "context"

// EmbeddingProvider is the external face-embedding capability. The model
// itself is an opaque pre-trained black box; the core only consumes its
// detections.
//
// Load must be called once before DetectFaces; a provider whose assets are
// still loading reports Ready() == false, which the capture machine surfaces
// as a distinct loading status, never as a camera failure.
type EmbeddingProvider interface {
	// Load fetches or warms the provider's model assets. Safe to call once
	// per process; idempotent on success.
	Load(ctx context.Context) error

	// Ready reports whether Load completed successfully.
	Ready() bool

	// DetectFaces returns zero or more detected faces for one frame, with
	// no guaranteed ordering beyond detector internals.
	DetectFaces(ctx context.Context, frame []byte) ([]DetectedFace, error)
}

// DetectedFace is one face found in one frame.
type DetectedFace struct {
	Descriptor  []float64   `json:"descriptor"`
	Score       float64     `json:"score"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// BoundingBox represents the face area in the frame
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
