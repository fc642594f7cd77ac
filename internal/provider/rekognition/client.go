package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidParameter = "InvalidParameterException"
)

// RekognitionAPI is the subset of the AWS Rekognition client the provider
// depends on, narrowed for testability.
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	ListCollections(ctx context.Context, params *rekognition.ListCollectionsInput, optFns ...func(*rekognition.Options)) (*rekognition.ListCollectionsOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	rekognition RekognitionAPI
	config      Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}

// Ping verifies that Rekognition is reachable with the configured credentials.
// ListCollections is the cheapest authenticated call available.
func (c *Client) Ping(ctx context.Context) error {
	input := &rekognition.ListCollectionsInput{
		MaxResults: aws.Int32(1),
	}

	if _, err := c.rekognition.ListCollections(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeAccessDenied {
			return fmt.Errorf("ping rekognition: %w", ErrInvalidCredentials)
		}
		return fmt.Errorf("ping rekognition: %w", err)
	}

	return nil
}

// DetectFaces calls the Rekognition DetectFaces API with full attributes so
// landmark geometry is available for descriptor derivation.
func (c *Client) DetectFaces(ctx context.Context, frame []byte) ([]types.FaceDetail, error) {
	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: frame,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := c.rekognition.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeAccessDenied:
				return nil, fmt.Errorf("detect faces: %w", ErrInvalidCredentials)
			case errCodeInvalidParameter:
				return nil, fmt.Errorf("%w: %s", ErrInvalidFrame, apiErr.ErrorMessage())
			}
		}
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	return output.FaceDetails, nil
}
