package face

import (
	"context"
	"testing"

	"github.com/aulavista/facemark/internal/config"
	"github.com/aulavista/facemark/internal/provider/deepface"
	"github.com/aulavista/facemark/internal/provider/mock"
	"github.com/aulavista/facemark/internal/provider/rekognition"
)

func TestNewEmbeddingProvider_DeepFace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		providerType string
		deepFaceURL  string
	}{
		{
			name:         "explicit deepface provider",
			providerType: "deepface",
			deepFaceURL:  "http://localhost:5005",
		},
		{
			name:         "empty provider defaults to deepface",
			providerType: "",
			deepFaceURL:  "http://localhost:5005",
		},
		{
			name:         "custom deepface URL",
			providerType: "deepface",
			deepFaceURL:  "http://custom-host:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				ProviderType: tt.providerType,
				DeepFaceURL:  tt.deepFaceURL,
			}

			provider, err := NewEmbeddingProvider(ctx, cfg)
			if err != nil {
				t.Fatalf("NewEmbeddingProvider() error = %v", err)
			}

			if _, ok := provider.(*deepface.Provider); !ok {
				t.Errorf("NewEmbeddingProvider() returned type %T, want *deepface.Provider", provider)
			}

			if provider.Ready() {
				t.Error("NewEmbeddingProvider() must return an unloaded provider")
			}
		})
	}
}

func TestNewEmbeddingProvider_Mock(t *testing.T) {
	cfg := &config.Config{ProviderType: "mock"}

	provider, err := NewEmbeddingProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider() error = %v", err)
	}

	if _, ok := provider.(*mock.Provider); !ok {
		t.Errorf("NewEmbeddingProvider() returned type %T, want *mock.Provider", provider)
	}
}

func TestNewEmbeddingProvider_Rekognition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Rekognition test in short mode (requires AWS credentials)")
	}

	cfg := &config.Config{
		ProviderType: "rekognition",
		AWSRegion:    "us-east-1",
	}

	provider, err := NewEmbeddingProvider(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping Rekognition test (likely missing AWS credentials): %v", err)
	}

	if _, ok := provider.(*rekognition.Provider); !ok {
		t.Errorf("NewEmbeddingProvider() returned type %T, want *rekognition.Provider", provider)
	}
}

func TestNewEmbeddingProvider_UnknownProvider(t *testing.T) {
	cfg := &config.Config{ProviderType: "unknown-provider"}

	_, err := NewEmbeddingProvider(context.Background(), cfg)
	if err == nil {
		t.Fatal("NewEmbeddingProvider() expected error for unknown provider, got nil")
	}

	expectedErrMsg := "unknown provider type: unknown-provider"
	if err.Error()[:len(expectedErrMsg)] != expectedErrMsg {
		t.Errorf("NewEmbeddingProvider() error = %v, want error containing %q", err, expectedErrMsg)
	}
}

func TestProviderType_Constants(t *testing.T) {
	if ProviderTypeDeepFace != "deepface" {
		t.Errorf("ProviderTypeDeepFace = %q, want %q", ProviderTypeDeepFace, "deepface")
	}

	if ProviderTypeRekognition != "rekognition" {
		t.Errorf("ProviderTypeRekognition = %q, want %q", ProviderTypeRekognition, "rekognition")
	}

	if ProviderTypeMock != "mock" {
		t.Errorf("ProviderTypeMock = %q, want %q", ProviderTypeMock, "mock")
	}
}
