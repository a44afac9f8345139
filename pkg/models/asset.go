package models

import (
	"time"

	"github.com/google/uuid"
)

const AssetTypeImage = "image"

// Asset category tags used in the metadata map and for browsing filters.
const (
	CategoryCharacter   = "character"
	CategoryEnvironment = "environment"
	CategoryNature      = "nature"
	CategoryScene       = "scene"
)

// Asset is the metadata envelope for one generated image. Assets are
// append-only: the pipeline never mutates an asset after creation.
type Asset struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	JobID     *uuid.UUID     `db:"job_id"     json:"job_id,omitempty"`
	Type      string         `db:"type"       json:"type"`
	Title     *string        `db:"title"      json:"title,omitempty"`
	Prompt    *string        `db:"prompt"     json:"prompt,omitempty"`
	Metadata  map[string]any `db:"metadata"   json:"metadata"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// AssetRendition holds the encoded image bytes for one asset. The latest
// rendition for an asset is the most recently created row, never an
// explicit pointer.
type AssetRendition struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	AssetID    uuid.UUID `db:"asset_id"    json:"asset_id"`
	MimeType   string    `db:"mime_type"   json:"mime_type"`
	Width      int       `db:"width"       json:"width"`
	Height     int       `db:"height"      json:"height"`
	DataBase64 string    `db:"data_base64" json:"data_base64"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
