// Package ark implements models.ImageProvider against a per-region signed
// visual-generation endpoint. Credentials are an exclusive choice made at
// config time: either a signing key pair or a pre-issued bearer key,
// never both.
package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/AkhilTej3/anime-storyboard/internal/config"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

const (
	actionName    = "CVProcess"
	actionVersion = "2022-08-31"
	successCode   = 10000
)

// Provider implements models.ImageProvider using the signed HTTP API.
type Provider struct {
	cfg    config.ArkConfig
	client *http.Client
	now    func() time.Time
}

func NewProvider(cfg config.ArkConfig, timeout time.Duration) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

func (p *Provider) Name() string { return "ark" }

func (p *Provider) Generate(ctx context.Context, req models.ImageRequest) (models.ImageResult, error) {
	width, height := req.Size.Dimensions()
	body := processRequest{
		ReqKey:   p.cfg.ReqKey,
		Prompt:   req.Prompt,
		Width:    width,
		Height:   height,
		ImageNum: 1,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("https://%s/?Action=%s&Version=%s", p.cfg.Host, actionName, actionVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	switch p.cfg.CredentialMode {
	case config.ArkCredentialBearer:
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	default:
		sg := &signer{
			accessKey: p.cfg.AccessKey,
			secretKey: p.cfg.SecretKey,
			region:    p.cfg.Region,
		}
		sg.sign(httpReq, hashSHA256(payload), p.now())
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ImageResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ImageResult{}, fmt.Errorf("%w: status %d",
			models.ErrProviderUnavailable, resp.StatusCode)
	}

	var procResp processResponse
	if err := json.NewDecoder(resp.Body).Decode(&procResp); err != nil {
		return models.ImageResult{}, fmt.Errorf("decoding response: %w", err)
	}

	if procResp.Code != successCode {
		return models.ImageResult{}, fmt.Errorf("%w: code %d: %s",
			models.ErrProviderUnavailable, procResp.Code, procResp.Message)
	}
	if len(procResp.Data.BinaryDataBase64) == 0 || procResp.Data.BinaryDataBase64[0] == "" {
		return models.ImageResult{}, models.ErrNoImageData
	}

	return models.ImageResult{
		DataBase64: procResp.Data.BinaryDataBase64[0],
		MimeType:   "image/png",
		Width:      width,
		Height:     height,
		Model:      p.cfg.ReqKey,
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

type processRequest struct {
	ReqKey   string `json:"req_key"`
	Prompt   string `json:"prompt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ImageNum int    `json:"image_num"`
}

type processResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		BinaryDataBase64 []string `json:"binary_data_base64"`
	} `json:"data"`
}

// Compile-time check that Provider implements ImageProvider.
var _ models.ImageProvider = (*Provider)(nil)
