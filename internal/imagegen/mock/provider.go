package mock

import (
	"context"

	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// TinyPNG is a valid 1x1 transparent PNG, base64-encoded. Small enough to
// assert against in tests without fixture files.
const TinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// MockProvider satisfies models.ImageProvider for testing.
type MockProvider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.ImageRequest) (models.ImageResult, error)

	// Calls records every request in order, for asserting sequencing.
	Calls []models.ImageRequest
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Generate(ctx context.Context, req models.ImageRequest) (models.ImageResult, error) {
	m.Calls = append(m.Calls, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return models.ImageResult{}, nil
}

// NewMockProvider returns a MockProvider that produces a tiny PNG payload
// sized to the requested bucket.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.ImageRequest) (models.ImageResult, error) {
			width, height := req.Size.Dimensions()
			return models.ImageResult{
				DataBase64: TinyPNG,
				MimeType:   "image/png",
				Width:      width,
				Height:     height,
				Model:      "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.ImageRequest) (models.ImageResult, error) {
			return models.ImageResult{}, err
		},
	}
}

// NewEmptyProvider returns a MockProvider that simulates a backend
// responding successfully but without any image payload.
func NewEmptyProvider() *MockProvider {
	return NewFailingProvider(models.ErrNoImageData)
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.ImageRequest) (models.ImageResult, error) {
			<-ctx.Done()
			return models.ImageResult{}, models.ErrGenerationTimeout
		},
	}
}

// Compile-time check that MockProvider implements ImageProvider.
var _ models.ImageProvider = (*MockProvider)(nil)
