package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AkhilTej3/anime-storyboard/internal/api/response"
	"github.com/AkhilTej3/anime-storyboard/internal/generation"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// Validation bounds. Enforced before any job row is created; validation
// errors never touch persistence.
const (
	minScriptLen   = 20
	minSceneCount  = 2
	maxSceneCount  = 8
	minCategory    = 1
	maxCategory    = 6
	maxProjectName = 120
)

// Generator is the orchestration interface the generation handlers depend on.
type Generator interface {
	GenerateImage(ctx context.Context, params generation.SingleImageParams) (*generation.SingleImageResult, error)
	GenerateProjectPack(ctx context.Context, params generation.ProjectPackParams) (*generation.ProjectPackResult, error)
	GenerateStoryboard(ctx context.Context, params generation.StoryboardParams) (*generation.StoryboardResult, error)
}

// NewGenerateImageHandler returns the handler for POST /api/v1/generate/image.
func NewGenerateImageHandler(svc Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt         string `json:"prompt"`
			NegativePrompt string `json:"negative_prompt"`
			StylePreset    string `json:"style_preset"`
			Size           string `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Prompt) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "prompt is required",
				map[string]string{"field": "prompt"})
			return
		}

		size, err := models.ParseSize(req.Size)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(),
				map[string]string{"field": "size"})
			return
		}

		result, err := svc.GenerateImage(r.Context(), generation.SingleImageParams{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			StylePreset:    req.StylePreset,
			Size:           size,
		})
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		response.JSON(w, map[string]any{
			"job":       result.Job,
			"asset":     result.Asset,
			"rendition": result.Rendition,
		})
	}
}

// NewGenerateProjectPackHandler returns the handler for POST /api/v1/generate/project-pack.
func NewGenerateProjectPackHandler(svc Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProjectName      string `json:"project_name"`
			Script           string `json:"script"`
			CharacterCount   int    `json:"character_count"`
			EnvironmentCount int    `json:"environment_count"`
			NatureCount      int    `json:"nature_count"`
			StylePreset      string `json:"style_preset"`
			Size             string `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if msg, field := validateProjectName(req.ProjectName); msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg,
				map[string]string{"field": field})
			return
		}
		if msg := validateScript(req.Script); msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg,
				map[string]string{"field": "script"})
			return
		}
		for field, count := range map[string]int{
			"character_count":   req.CharacterCount,
			"environment_count": req.EnvironmentCount,
			"nature_count":      req.NatureCount,
		} {
			if count < minCategory || count > maxCategory {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					field+" must be between 1 and 6",
					map[string]string{"field": field})
				return
			}
		}

		size, err := models.ParseSize(req.Size)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(),
				map[string]string{"field": "size"})
			return
		}

		result, err := svc.GenerateProjectPack(r.Context(), generation.ProjectPackParams{
			ProjectName:      req.ProjectName,
			Script:           req.Script,
			CharacterCount:   req.CharacterCount,
			EnvironmentCount: req.EnvironmentCount,
			NatureCount:      req.NatureCount,
			StylePreset:      req.StylePreset,
			Size:             size,
		})
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		response.JSON(w, map[string]any{
			"job": result.Job,
			"assets": map[string]any{
				"characters":   result.Characters,
				"environments": result.Environments,
				"nature":       result.Nature,
			},
		})
	}
}

// NewGenerateStoryboardHandler returns the handler for POST /api/v1/generate/storyboard.
func NewGenerateStoryboardHandler(svc Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Script            string   `json:"script"`
			SceneCount        int      `json:"scene_count"`
			ProjectName       string   `json:"project_name"`
			CharacterNotes    string   `json:"character_notes"`
			EnvironmentNotes  string   `json:"environment_notes"`
			NatureNotes       string   `json:"nature_notes"`
			ReferenceAssetIDs []string `json:"reference_asset_ids"`
			StylePreset       string   `json:"style_preset"`
			Size              string   `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if msg := validateScript(req.Script); msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg,
				map[string]string{"field": "script"})
			return
		}
		if req.SceneCount < minSceneCount || req.SceneCount > maxSceneCount {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"scene_count must be between 2 and 8",
				map[string]string{"field": "scene_count"})
			return
		}
		if msg, field := validateProjectName(req.ProjectName); msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg,
				map[string]string{"field": field})
			return
		}

		size, err := models.ParseSize(req.Size)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(),
				map[string]string{"field": "size"})
			return
		}

		referenceIDs := make([]uuid.UUID, 0, len(req.ReferenceAssetIDs))
		for _, raw := range req.ReferenceAssetIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"reference_asset_ids must be valid UUIDs",
					map[string]string{"field": "reference_asset_ids"})
				return
			}
			referenceIDs = append(referenceIDs, id)
		}

		result, err := svc.GenerateStoryboard(r.Context(), generation.StoryboardParams{
			Script:            req.Script,
			SceneCount:        req.SceneCount,
			ProjectName:       req.ProjectName,
			CharacterNotes:    req.CharacterNotes,
			EnvironmentNotes:  req.EnvironmentNotes,
			NatureNotes:       req.NatureNotes,
			ReferenceAssetIDs: referenceIDs,
			StylePreset:       req.StylePreset,
			Size:              size,
		})
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		response.JSON(w, map[string]any{
			"job":    result.Job,
			"scenes": result.Scenes,
		})
	}
}

func validateScript(script string) string {
	if len(strings.TrimSpace(script)) < minScriptLen {
		return "script must be at least 20 characters"
	}
	return ""
}

func validateProjectName(name string) (msg, field string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "project_name is required", "project_name"
	}
	if len(trimmed) > maxProjectName {
		return "project_name must be at most 120 characters", "project_name"
	}
	return "", ""
}

// writeGenerationError maps pipeline errors to API responses. Provider
// detail stays in server logs; callers get stable codes.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNoImageData):
		response.Error(w, http.StatusInternalServerError, "NO_IMAGE_DATA",
			"No image data returned", nil)
	case errors.Is(err, models.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE",
			"The image provider is not available", nil)
	case errors.Is(err, models.ErrGenerationTimeout):
		response.Error(w, http.StatusGatewayTimeout, "GENERATION_TIMEOUT",
			"Image generation took too long and was cancelled", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
