package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

const (
	JobKindImage       = "image"
	JobKindProjectPack = "project_pack"
	JobKindStoryboard  = "storyboard"
)

// GenerationJob tracks one end-to-end generation request. The API returns the
// job inline with the generation response; GET /api/v1/jobs/{job_id} reports
// progress until status is succeeded or failed.
type GenerationJob struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	Kind           string     `db:"kind"            json:"kind"`
	PromptSummary  string     `db:"prompt_summary"  json:"prompt_summary"`
	NegativePrompt *string    `db:"negative_prompt" json:"negative_prompt,omitempty"`
	StylePreset    *string    `db:"style_preset"    json:"style_preset,omitempty"`
	Size           string     `db:"size"            json:"size"`
	Status         string     `db:"status"          json:"status"`
	Progress       int        `db:"progress"        json:"progress"`
	ErrorMessage   *string    `db:"error_message"   json:"error_message,omitempty"`
	StartedAt      *time.Time `db:"started_at"      json:"started_at,omitempty"`
	CompletedAt    *time.Time `db:"completed_at"    json:"completed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}
