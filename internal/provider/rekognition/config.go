package rekognition

// Config holds configuration for the AWS Rekognition provider
type Config struct {
	// Region is the AWS region where Rekognition will be called (e.g., "us-east-1")
	Region string

	// MinConfidence filters out detections below this Rekognition confidence
	// percentage (0-100) before they reach the capture machine.
	MinConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 50,
	}
}
