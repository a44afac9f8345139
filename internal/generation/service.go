// Package generation orchestrates the script-to-image pipeline: job
// lifecycle, prompt assembly, sequential provider calls, and persistence
// of the resulting assets and renditions.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AkhilTej3/anime-storyboard/internal/cache"
	"github.com/AkhilTej3/anime-storyboard/internal/script"
	"github.com/AkhilTej3/anime-storyboard/internal/store"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

const (
	jobStateTTL        = 30 * time.Minute
	maxReferenceAssets = 12
	maxSummaryLen      = 500
)

// Service runs the three generation flows. Each flow executes
// synchronously within the caller's request: provider calls are issued
// strictly sequentially, never concurrently, because storyboard prompts
// reference prior frames and progress must be monotone.
type Service struct {
	provider models.ImageProvider
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
}

// NewService creates a new generation Service.
func NewService(provider models.ImageProvider, st store.Store, ca cache.Cache, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		store:    st,
		cache:    ca,
		timeout:  timeout,
	}
}

// SingleImageParams holds validated parameters for a single-image request.
type SingleImageParams struct {
	Prompt         string
	NegativePrompt string
	StylePreset    string
	Size           models.ImageSize
}

// SingleImageResult is the output of a single-image run.
type SingleImageResult struct {
	Job       *models.GenerationJob
	Asset     *models.Asset
	Rendition *models.AssetRendition
}

// ProjectPackParams holds validated parameters for a project asset pack.
type ProjectPackParams struct {
	ProjectName      string
	Script           string
	CharacterCount   int
	EnvironmentCount int
	NatureCount      int
	StylePreset      string
	Size             models.ImageSize
}

// GeneratedAsset pairs an asset with the rendition created for it.
type GeneratedAsset struct {
	Asset     *models.Asset          `json:"asset"`
	Rendition *models.AssetRendition `json:"rendition"`
}

// ProjectPackResult groups the generated reference images by category.
type ProjectPackResult struct {
	Job          *models.GenerationJob
	Characters   []GeneratedAsset
	Environments []GeneratedAsset
	Nature       []GeneratedAsset
}

// StoryboardParams holds validated parameters for a storyboard run.
type StoryboardParams struct {
	Script            string
	SceneCount        int
	ProjectName       string
	CharacterNotes    string
	EnvironmentNotes  string
	NatureNotes       string
	ReferenceAssetIDs []uuid.UUID
	StylePreset       string
	Size              models.ImageSize
}

// SceneFrame is one generated storyboard frame with its descriptor.
type SceneFrame struct {
	models.SceneDescriptor
	Asset     *models.Asset          `json:"asset"`
	Rendition *models.AssetRendition `json:"rendition"`
}

// StoryboardResult is the output of a storyboard run.
type StoryboardResult struct {
	Job    *models.GenerationJob
	Scenes []SceneFrame
}

// GenerateImage runs the single-image flow: one prompt, one provider
// call, one asset and rendition. Progress jumps 10 then 100.
func (s *Service) GenerateImage(ctx context.Context, params SingleImageParams) (_ *SingleImageResult, err error) {
	job, err := s.createJob(ctx, models.JobKindImage, params.Prompt,
		params.NegativePrompt, params.StylePreset, params.Size)
	if err != nil {
		return nil, err
	}
	defer s.reconcile(job, &err)

	if err = s.startJob(ctx, job); err != nil {
		return nil, err
	}
	s.setProgress(ctx, job, 10)

	prompt := script.AssembleSinglePrompt(params.Prompt, params.NegativePrompt, params.StylePreset)

	result, err := s.generateOne(ctx, prompt, params.Size)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"provider": s.provider.Name(),
		"source":   models.JobKindImage,
	}
	asset, rendition, err := s.persistImage(ctx, job.ID, nil, params.Prompt, metadata, result)
	if err != nil {
		return nil, err
	}

	if err = s.completeJob(ctx, job); err != nil {
		return nil, err
	}

	return &SingleImageResult{Job: job, Asset: asset, Rendition: rendition}, nil
}

// GenerateProjectPack generates category reference batches in a fixed
// order: characters, then environments, then nature. There is no
// cross-category continuity; consistency comes from the shared style
// preset and project name in each prompt.
func (s *Service) GenerateProjectPack(ctx context.Context, params ProjectPackParams) (_ *ProjectPackResult, err error) {
	job, err := s.createJob(ctx, models.JobKindProjectPack,
		"project asset pack: "+truncateString(params.Script, maxSummaryLen),
		"", params.StylePreset, params.Size)
	if err != nil {
		return nil, err
	}
	defer s.reconcile(job, &err)

	if err = s.startJob(ctx, job); err != nil {
		return nil, err
	}

	plan := buildPackPlan(params)

	result := &ProjectPackResult{Job: job}
	for i, item := range plan {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		var imageResult models.ImageResult
		imageResult, err = s.generateOne(ctx, item.Prompt, params.Size)
		if err != nil {
			return nil, err
		}

		title := truncateString(item.Descriptor, 120)
		metadata := map[string]any{
			"category":   item.Category,
			"project":    params.ProjectName,
			"descriptor": item.Descriptor,
			"provider":   s.provider.Name(),
			"source":     models.JobKindProjectPack,
		}
		var asset *models.Asset
		var rendition *models.AssetRendition
		asset, rendition, err = s.persistImage(ctx, job.ID, &title, item.Prompt, metadata, imageResult)
		if err != nil {
			return nil, err
		}

		generated := GeneratedAsset{Asset: asset, Rendition: rendition}
		switch item.Category {
		case models.CategoryCharacter:
			result.Characters = append(result.Characters, generated)
		case models.CategoryEnvironment:
			result.Environments = append(result.Environments, generated)
		case models.CategoryNature:
			result.Nature = append(result.Nature, generated)
		}

		s.setProgress(ctx, job, (i+1)*100/len(plan))
	}

	if err = s.completeJob(ctx, job); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateStoryboard segments the script into scene descriptors and
// generates one frame per scene, strictly sequentially: frame N's call is
// issued only after frame N-1's asset and rendition are durably created
// and progress updated. Any scene failure aborts the whole run.
func (s *Service) GenerateStoryboard(ctx context.Context, params StoryboardParams) (_ *StoryboardResult, err error) {
	references, err := s.resolveReferences(ctx, params)
	if err != nil {
		return nil, err
	}
	referenceSummary := script.ReferenceSummary(references)

	chunks := script.SegmentScript(params.Script, params.SceneCount)
	scenes := script.BuildSceneDescriptors(params.Script, chunks, script.SceneNotes{
		Character:   params.CharacterNotes,
		Environment: params.EnvironmentNotes,
		Nature:      params.NatureNotes,
	})

	job, err := s.createJob(ctx, models.JobKindStoryboard,
		"storyboard: "+truncateString(params.Script, maxSummaryLen),
		"", params.StylePreset, params.Size)
	if err != nil {
		return nil, err
	}
	defer s.reconcile(job, &err)

	if err = s.startJob(ctx, job); err != nil {
		return nil, err
	}

	result := &StoryboardResult{Job: job, Scenes: make([]SceneFrame, 0, len(scenes))}
	for i, scene := range scenes {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		prompt := script.AssembleScenePrompt(params.ProjectName, scene, len(scenes),
			params.StylePreset, referenceSummary)

		var imageResult models.ImageResult
		imageResult, err = s.generateOne(ctx, prompt, params.Size)
		if err != nil {
			return nil, err
		}

		title := scene.Title
		metadata := map[string]any{
			"category":    models.CategoryScene,
			"project":     params.ProjectName,
			"scene_index": scene.Index,
			"continuity":  scene.CharacterConsistency,
			"provider":    s.provider.Name(),
			"source":      models.JobKindStoryboard,
		}
		var asset *models.Asset
		var rendition *models.AssetRendition
		asset, rendition, err = s.persistImage(ctx, job.ID, &title, prompt, metadata, imageResult)
		if err != nil {
			return nil, err
		}

		result.Scenes = append(result.Scenes, SceneFrame{
			SceneDescriptor: scene,
			Asset:           asset,
			Rendition:       rendition,
		})

		s.setProgress(ctx, job, (i+1)*100/len(scenes))
	}

	if err = s.completeJob(ctx, job); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveReferences lists previously committed project assets for the
// continuity context: an explicit id list when supplied, otherwise
// character-tagged project assets, capped at maxReferenceAssets.
func (s *Service) resolveReferences(ctx context.Context, params StoryboardParams) ([]*models.Asset, error) {
	if len(params.ReferenceAssetIDs) > 0 {
		ids := params.ReferenceAssetIDs
		if len(ids) > maxReferenceAssets {
			ids = ids[:maxReferenceAssets]
		}
		assets, err := s.store.GetAssetsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolving reference assets: %w", err)
		}
		return assets, nil
	}

	assets, _, err := s.store.ListAssets(ctx, store.AssetFilter{
		Project:  params.ProjectName,
		Category: models.CategoryCharacter,
		Limit:    maxReferenceAssets,
	})
	if err != nil {
		return nil, fmt.Errorf("listing reference assets: %w", err)
	}
	return assets, nil
}

// --- job lifecycle helpers ---

func (s *Service) createJob(ctx context.Context, kind, summary, negativePrompt, stylePreset string, size models.ImageSize) (*models.GenerationJob, error) {
	now := time.Now().UTC()
	job := &models.GenerationJob{
		ID:            uuid.New(),
		Kind:          kind,
		PromptSummary: truncateString(summary, maxSummaryLen),
		Size:          size.String(),
		Status:        models.JobStatusQueued,
		Progress:      0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if negativePrompt != "" {
		job.NegativePrompt = &negativePrompt
	}
	if stylePreset != "" {
		job.StylePreset = &stylePreset
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	s.cacheJobState(ctx, job)
	return job, nil
}

func (s *Service) startJob(ctx context.Context, job *models.GenerationJob) error {
	if err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
		return fmt.Errorf("starting job: %w", err)
	}
	job.Status = models.JobStatusRunning
	s.cacheJobState(ctx, job)
	return nil
}

func (s *Service) completeJob(ctx context.Context, job *models.GenerationJob) error {
	if err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded,
		store.WithProgress(100)); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	job.Status = models.JobStatusSucceeded
	job.Progress = 100
	s.cacheJobState(ctx, job)
	return nil
}

// reconcile guarantees a terminal status: any error (or panic) after job
// creation marks the job failed with the captured message. Runs against a
// background context so a cancelled request still reaches a terminal state.
func (s *Service) reconcile(job *models.GenerationJob, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("internal error: %v", r)
		slog.Error("panic in generation run", "error", r, "job_id", job.ID)
	}
	if *errp == nil {
		return
	}

	ctx := context.Background()
	if err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed,
		store.WithErrorMessage((*errp).Error())); err != nil {
		slog.Error("failed to mark job failed", "error", err, "job_id", job.ID)
		return
	}
	job.Status = models.JobStatusFailed
	msg := (*errp).Error()
	job.ErrorMessage = &msg
	s.cacheJobState(ctx, job)
}

func (s *Service) setProgress(ctx context.Context, job *models.GenerationJob, progress int) {
	if progress < job.Progress {
		return
	}
	if err := s.store.UpdateJobProgress(ctx, job.ID, progress); err != nil {
		slog.Warn("failed to update job progress", "error", err, "job_id", job.ID)
		return
	}
	job.Progress = progress
	s.cacheJobState(ctx, job)
}

func (s *Service) cacheJobState(ctx context.Context, job *models.GenerationJob) {
	_ = s.cache.SetJobState(ctx, job.ID, cache.JobState{
		Status:   job.Status,
		Progress: job.Progress,
	}, jobStateTTL)
}

// --- generation helpers ---

func (s *Service) generateOne(ctx context.Context, prompt string, size models.ImageSize) (models.ImageResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.provider.Generate(callCtx, models.ImageRequest{Prompt: prompt, Size: size})
	if err != nil {
		return models.ImageResult{}, err
	}
	return result, nil
}

func (s *Service) persistImage(ctx context.Context, jobID uuid.UUID, title *string, prompt string, metadata map[string]any, result models.ImageResult) (*models.Asset, *models.AssetRendition, error) {
	now := time.Now().UTC()

	asset := &models.Asset{
		ID:        uuid.New(),
		JobID:     &jobID,
		Type:      models.AssetTypeImage,
		Title:     title,
		Prompt:    &prompt,
		Metadata:  metadata,
		CreatedAt: now,
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		return nil, nil, fmt.Errorf("storing asset: %w", err)
	}

	rendition := &models.AssetRendition{
		ID:         uuid.New(),
		AssetID:    asset.ID,
		MimeType:   result.MimeType,
		Width:      result.Width,
		Height:     result.Height,
		DataBase64: result.DataBase64,
		CreatedAt:  now,
	}
	if err := s.store.CreateRendition(ctx, rendition); err != nil {
		return nil, nil, fmt.Errorf("storing rendition: %w", err)
	}

	return asset, rendition, nil
}

// buildPackPlan expands the pack request into the ordered list of
// reference images to generate: characters, then environments, then
// nature, one descriptor each with its fully assembled prompt.
func buildPackPlan(params ProjectPackParams) []models.ProjectAssetDescriptor {
	batches := []struct {
		category    string
		descriptors []string
	}{
		{models.CategoryCharacter, withFallback(script.ExtractCharacterCandidates(params.Script, params.CharacterCount), params.Script)},
		{models.CategoryEnvironment, withFallback(script.ExtractEnvironmentCandidates(params.Script, params.EnvironmentCount), params.Script)},
		{models.CategoryNature, withFallback(script.ExtractNatureCandidates(params.Script, params.NatureCount), params.Script)},
	}

	var plan []models.ProjectAssetDescriptor
	for _, batch := range batches {
		for _, descriptor := range batch.descriptors {
			plan = append(plan, models.ProjectAssetDescriptor{
				Category:   batch.category,
				Descriptor: descriptor,
				Prompt:     script.AssembleAssetPrompt(params.ProjectName, batch.category, descriptor, params.StylePreset),
			})
		}
	}
	return plan
}

// withFallback substitutes a truncated script prefix when an extractor
// yields nothing, so every category generates at least one asset.
func withFallback(descriptors []string, text string) []string {
	if len(descriptors) > 0 {
		return descriptors
	}
	return []string{script.FallbackDescriptor(text)}
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
