// Package models contains shared data models used across the codebase.
package models

import (
	"context"
	"fmt"
)

// ImageProvider is the interface every image-generation backend implements.
// Never call a specific backend directly — always inject this interface.
type ImageProvider interface {
	// Generate produces one image for the given prompt and size bucket.
	// Implementations do not retry: a non-success response or an empty
	// payload is a terminal failure for the call.
	Generate(ctx context.Context, req ImageRequest) (ImageResult, error)
	// Name returns the backend identifier (e.g., "openai", "ark").
	Name() string
}

// ImageRequest is the input to a single generation call.
type ImageRequest struct {
	Prompt string
	Size   ImageSize
}

// ImageResult is one generated image payload.
type ImageResult struct {
	DataBase64 string
	MimeType   string
	Width      int
	Height     int
	Model      string
}

// ImageSize is one of the three fixed size buckets.
type ImageSize string

const (
	Size1024 ImageSize = "1024x1024"
	Size512  ImageSize = "512x512"
	Size256  ImageSize = "256x256"
)

// DefaultSize is used when a request omits the size field.
const DefaultSize = Size1024

// ParseSize validates a size string, treating empty as the default bucket.
func ParseSize(s string) (ImageSize, error) {
	switch ImageSize(s) {
	case "":
		return DefaultSize, nil
	case Size1024, Size512, Size256:
		return ImageSize(s), nil
	default:
		return "", fmt.Errorf("size must be one of %s, %s, %s; got %q", Size1024, Size512, Size256, s)
	}
}

// Dimensions returns the pixel width and height of the bucket.
func (s ImageSize) Dimensions() (int, int) {
	switch s {
	case Size512:
		return 512, 512
	case Size256:
		return 256, 256
	default:
		return 1024, 1024
	}
}

func (s ImageSize) String() string { return string(s) }
