package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, job *models.GenerationJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error

	CreateAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	GetAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Asset, error)
	ListAssets(ctx context.Context, filter AssetFilter) ([]*models.Asset, int, error)

	CreateRendition(ctx context.Context, rendition *models.AssetRendition) error
	GetLatestRendition(ctx context.Context, assetID uuid.UUID) (*models.AssetRendition, error)
}

// AssetFilter narrows asset listings. Project and Category match against
// the metadata map; zero values mean "any".
type AssetFilter struct {
	Project  string
	Category string
	JobID    *uuid.UUID
	Page     int
	Limit    int
}

type jobUpdateParams struct {
	ErrorMessage *string
	Progress     *int
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithProgress(progress int) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Progress = &progress
	}
}
