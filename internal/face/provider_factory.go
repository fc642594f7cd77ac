// Package face selects and builds the embedding provider backing the
// recognition pipeline.
package face

import (
	"context"
	"fmt"

	"github.com/aulavista/facemark/internal/config"
	"github.com/aulavista/facemark/internal/provider"
	"github.com/aulavista/facemark/internal/provider/deepface"
	"github.com/aulavista/facemark/internal/provider/mock"
	"github.com/aulavista/facemark/internal/provider/rekognition"
)

// ProviderType defines supported embedding provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace provider (local, for dev/test)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider (tests/demo)
	ProviderTypeMock ProviderType = "mock"
)

// NewEmbeddingProvider creates an EmbeddingProvider instance based on
// configuration. The returned provider is not loaded; callers own the Load
// call so startup can decide whether a provider failure is fatal.
//
// Environment variables:
//   - PROVIDER_TYPE: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config) (provider.EmbeddingProvider, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)

	case ProviderTypeMock:
		return mock.New(), nil

	case ProviderTypeDeepFace, "":
		// Default to DeepFace for dev/test environments
		return createDeepFaceProvider(cfg), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.ProviderType, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// createRekognitionProvider creates an AWS Rekognition provider instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.EmbeddingProvider, error) {
	rekogConfig := rekognition.DefaultConfig()
	rekogConfig.Region = cfg.AWSRegion

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) provider.EmbeddingProvider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}

	return deepface.NewProvider(deepfaceConfig)
}
