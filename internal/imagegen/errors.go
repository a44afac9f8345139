package imagegen

import "github.com/AkhilTej3/anime-storyboard/pkg/models"

// Re-exported so callers wiring providers don't need to import models for
// error checks alone.
var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrGenerationTimeout   = models.ErrGenerationTimeout
	ErrNoImageData         = models.ErrNoImageData
)
