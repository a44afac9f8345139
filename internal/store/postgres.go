package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Generation Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.GenerationJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO generation_jobs (id, kind, prompt_summary, negative_prompt, style_preset, size, status, progress, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.Kind, job.PromptSummary, job.NegativePrompt, job.StylePreset,
		job.Size, job.Status, job.Progress, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	var j models.GenerationJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, prompt_summary, negative_prompt, style_preset, size, status, progress, error_message, started_at, completed_at, created_at, updated_at
		 FROM generation_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Kind, &j.PromptSummary, &j.NegativePrompt, &j.StylePreset, &j.Size,
		&j.Status, &j.Progress, &j.ErrorMessage, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

var validTransitions = map[string][]string{
	models.JobStatusQueued:  {models.JobStatusRunning, models.JobStatusFailed},
	models.JobStatusRunning: {models.JobStatusSucceeded, models.JobStatusFailed},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	// Fetch current status
	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM generation_jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	// Validate transition
	allowed := validTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid job status transition: %s -> %s", currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE generation_jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusRunning {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.JobStatusSucceeded || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Progress != nil {
		query += fmt.Sprintf(", progress = GREATEST(progress, $%d)", argIdx)
		args = append(args, *params.Progress)
		argIdx++
	}

	query += " WHERE id = $1"

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// UpdateJobProgress raises a running job's progress. GREATEST keeps the
// value monotonically non-decreasing within a pipeline run.
func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE generation_jobs SET progress = GREATEST(progress, $2), updated_at = NOW() WHERE id = $1`,
		id, progress)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Assets ---

func (s *PostgresStore) CreateAsset(ctx context.Context, asset *models.Asset) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assets (id, job_id, type, title, prompt, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		asset.ID, asset.JobID, asset.Type, asset.Title, asset.Prompt, asset.Metadata, asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var a models.Asset
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, type, title, prompt, metadata, created_at FROM assets WHERE id = $1`, id,
	).Scan(&a.ID, &a.JobID, &a.Type, &a.Title, &a.Prompt, &a.Metadata, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) GetAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Asset, error) {
	if len(ids) == 0 {
		return []*models.Asset{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, type, title, prompt, metadata, created_at
		 FROM assets WHERE id = ANY($1) ORDER BY created_at ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("get assets by ids: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func (s *PostgresStore) ListAssets(ctx context.Context, filter AssetFilter) ([]*models.Asset, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.Project != "" {
		conditions = append(conditions, fmt.Sprintf("metadata->>'project' = $%d", argIdx))
		args = append(args, filter.Project)
		argIdx++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("metadata->>'category' = $%d", argIdx))
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", argIdx))
		args = append(args, *filter.JobID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM assets WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Data query
	dataQuery := fmt.Sprintf(
		`SELECT id, job_id, type, title, prompt, metadata, created_at
		 FROM assets WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets, err := scanAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func scanAssets(rows pgx.Rows) ([]*models.Asset, error) {
	var assets []*models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.JobID, &a.Type, &a.Title, &a.Prompt, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, &a)
	}
	if assets == nil {
		assets = []*models.Asset{}
	}
	return assets, rows.Err()
}

// --- Renditions ---

func (s *PostgresStore) CreateRendition(ctx context.Context, rendition *models.AssetRendition) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO asset_renditions (id, asset_id, mime_type, width, height, data_base64, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rendition.ID, rendition.AssetID, rendition.MimeType, rendition.Width,
		rendition.Height, rendition.DataBase64, rendition.CreatedAt)
	if err != nil {
		return fmt.Errorf("create rendition: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestRendition(ctx context.Context, assetID uuid.UUID) (*models.AssetRendition, error) {
	var r models.AssetRendition
	err := s.pool.QueryRow(ctx,
		`SELECT id, asset_id, mime_type, width, height, data_base64, created_at
		 FROM asset_renditions WHERE asset_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, assetID,
	).Scan(&r.ID, &r.AssetID, &r.MimeType, &r.Width, &r.Height, &r.DataBase64, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest rendition: %w", err)
	}
	return &r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
