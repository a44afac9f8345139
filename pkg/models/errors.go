package models

import "errors"

// Sentinel errors shared by all image-generation backends. A non-success
// response or an empty payload is terminal for that call; no backend retries.
var (
	ErrProviderUnavailable = errors.New("image provider unavailable")
	ErrGenerationTimeout   = errors.New("image generation timeout")
	ErrNoImageData         = errors.New("no image data returned")
)
