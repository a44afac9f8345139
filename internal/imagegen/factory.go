// Package imagegen wires the pluggable image-generation backends.
package imagegen

import (
	"fmt"

	"github.com/AkhilTej3/anime-storyboard/internal/config"
	"github.com/AkhilTej3/anime-storyboard/internal/imagegen/ark"
	"github.com/AkhilTej3/anime-storyboard/internal/imagegen/openai"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// NewProvider constructs the configured image backend.
// Called once at server startup; nothing re-reads provider selection per call.
func NewProvider(cfg config.GenerationConfig) (models.ImageProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI, cfg.RequestTimeout), nil
	case "ark":
		return ark.NewProvider(cfg.Ark, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown image provider %q: must be one of openai, ark", cfg.Provider)
	}
}
