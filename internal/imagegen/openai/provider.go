// Package openai implements models.ImageProvider against a hosted
// OpenAI-compatible image-generation endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/AkhilTej3/anime-storyboard/internal/config"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// Provider implements models.ImageProvider using the images API.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig, timeout time.Duration) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Generate(ctx context.Context, req models.ImageRequest) (models.ImageResult, error) {
	body := generationRequest{
		Model:  p.cfg.Model,
		Prompt: req.Prompt,
		Size:   req.Size.String(),
		N:      1,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("encoding request: %w", err)
	}

	u := p.cfg.BaseURL + "/v1/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ImageResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.ImageResult{}, fmt.Errorf("%w: status %d: %s",
			models.ErrProviderUnavailable, resp.StatusCode, bytes.TrimSpace(detail))
	}

	var genResp generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return models.ImageResult{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(genResp.Data) == 0 || genResp.Data[0].B64JSON == "" {
		return models.ImageResult{}, models.ErrNoImageData
	}

	width, height := req.Size.Dimensions()
	return models.ImageResult{
		DataBase64: genResp.Data[0].B64JSON,
		MimeType:   "image/png",
		Width:      width,
		Height:     height,
		Model:      p.cfg.Model,
	}, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrGenerationTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrGenerationTimeout, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// --- request/response types ---

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Compile-time check that Provider implements ImageProvider.
var _ models.ImageProvider = (*Provider)(nil)
