package rekognition

import (
	"context"
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavista/facemark/internal/domain"
)

// ptr is a helper function to get pointer to a value
func ptr[T any](v T) *T {
	return &v
}

// fakeFrameData returns fake frame data with minimum valid size
func fakeFrameData() []byte {
	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func newTestProvider(mock *mockRekognitionAPI) *Provider {
	return &Provider{
		client: &Client{rekognition: mock, config: DefaultConfig()},
	}
}

func faceDetail(confidence float32) types.FaceDetail {
	return types.FaceDetail{
		BoundingBox: &types.BoundingBox{
			Left:   ptr(float32(0.1)),
			Top:    ptr(float32(0.2)),
			Width:  ptr(float32(0.3)),
			Height: ptr(float32(0.4)),
		},
		Confidence: ptr(confidence),
		Landmarks: []types.Landmark{
			{Type: types.LandmarkTypeEyeLeft, X: ptr(float32(0.18)), Y: ptr(float32(0.32))},
			{Type: types.LandmarkTypeEyeRight, X: ptr(float32(0.30)), Y: ptr(float32(0.33))},
			{Type: types.LandmarkTypeNose, X: ptr(float32(0.24)), Y: ptr(float32(0.42))},
		},
	}
}

func TestProvider_LoadMarksReady(t *testing.T) {
	mock := &mockRekognitionAPI{}
	p := newTestProvider(mock)

	assert.False(t, p.Ready())
	require.NoError(t, p.Load(context.Background()))
	assert.True(t, p.Ready())
}

func TestProvider_LoadAccessDenied(t *testing.T) {
	mock := &mockRekognitionAPI{
		listCollectionsFunc: func(_ context.Context, _ *rekognition.ListCollectionsInput, _ ...func(*rekognition.Options)) (*rekognition.ListCollectionsOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"}
		},
	}
	p := newTestProvider(mock)

	err := p.Load(context.Background())

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, p.Ready())
}

func TestProvider_DetectFaces(t *testing.T) {
	mock := &mockRekognitionAPI{
		detectFacesFunc: func(_ context.Context, params *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
			assert.NotEmpty(t, params.Image.Bytes)
			assert.Contains(t, params.Attributes, types.AttributeAll)
			return &rekognition.DetectFacesOutput{
				FaceDetails: []types.FaceDetail{faceDetail(99.5)},
			}, nil
		},
	}
	p := newTestProvider(mock)

	faces, err := p.DetectFaces(context.Background(), fakeFrameData())

	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.InDelta(t, 0.995, faces[0].Score, 0.001)
	assert.InDelta(t, 0.1, faces[0].BoundingBox.X, 0.01)
	assert.InDelta(t, 0.3, faces[0].BoundingBox.Width, 0.01)
	assert.Len(t, faces[0].Descriptor, domain.DescriptorDim)

	// The geometry descriptor is L2-normalized.
	norm := 0.0
	for _, v := range faces[0].Descriptor {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 0.001)
}

func TestProvider_DetectFacesFiltersLowConfidence(t *testing.T) {
	mock := &mockRekognitionAPI{
		detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
			return &rekognition.DetectFacesOutput{
				FaceDetails: []types.FaceDetail{faceDetail(95), faceDetail(20)},
			}, nil
		},
	}
	p := newTestProvider(mock)

	faces, err := p.DetectFaces(context.Background(), fakeFrameData())

	require.NoError(t, err)
	require.Len(t, faces, 1, "detections below MinConfidence must be dropped")
	assert.InDelta(t, 0.95, faces[0].Score, 0.001)
}

func TestProvider_DetectFacesNoFaces(t *testing.T) {
	mock := &mockRekognitionAPI{}
	p := newTestProvider(mock)

	faces, err := p.DetectFaces(context.Background(), fakeFrameData())

	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestProvider_DetectFacesFrameValidation(t *testing.T) {
	p := newTestProvider(&mockRekognitionAPI{})

	_, err := p.DetectFaces(context.Background(), []byte("tiny"))
	assert.ErrorIs(t, err, ErrInvalidFrame)

	_, err = p.DetectFaces(context.Background(), make([]byte, maxFrameSize+1))
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestProvider_DetectFacesInvalidParameter(t *testing.T) {
	mock := &mockRekognitionAPI{
		detectFacesFunc: func(_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "InvalidParameterException", Message: "not an image"}
		},
	}
	p := newTestProvider(mock)

	_, err := p.DetectFaces(context.Background(), fakeFrameData())

	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestGeometryDescriptor_SameFaceIsStable(t *testing.T) {
	a := geometryDescriptor(faceDetail(99))
	b := geometryDescriptor(faceDetail(95))

	assert.Equal(t, a, b, "descriptor depends on geometry, not confidence")
}

func TestGeometryDescriptor_NoLandmarks(t *testing.T) {
	d := geometryDescriptor(types.FaceDetail{
		BoundingBox: &types.BoundingBox{
			Left: ptr(float32(0)), Top: ptr(float32(0)),
			Width: ptr(float32(0.5)), Height: ptr(float32(0.5)),
		},
	})

	assert.Len(t, d, domain.DescriptorDim)
	assert.Equal(t, make([]float64, domain.DescriptorDim), d)
}
