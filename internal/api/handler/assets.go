package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AkhilTej3/anime-storyboard/internal/api/response"
	"github.com/AkhilTej3/anime-storyboard/internal/store"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// NewListAssetsHandler returns the handler for GET /api/v1/assets.
// Supports ?project=, ?category=, ?job_id=, ?page=, ?limit=. Listings
// never include rendition payloads; those are fetched per asset.
func NewListAssetsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := store.AssetFilter{
			Project:  q.Get("project"),
			Category: q.Get("category"),
		}

		if raw := q.Get("job_id"); raw != "" {
			jobID, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"job_id must be a valid UUID", nil)
				return
			}
			filter.JobID = &jobID
		}

		if raw := q.Get("page"); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil || page < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"page must be a positive integer", nil)
				return
			}
			filter.Page = page
		}
		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a positive integer", nil)
				return
			}
			filter.Limit = limit
		}

		assets, total, err := s.ListAssets(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list assets", nil)
			return
		}

		page := filter.Page
		if page < 1 {
			page = 1
		}
		limit := filter.Limit
		if limit < 1 {
			limit = 20
		}

		response.Collection(w, assets, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

type assetDetailResponse struct {
	Asset     *models.Asset          `json:"asset"`
	Rendition *models.AssetRendition `json:"rendition,omitempty"`
}

// NewGetAssetHandler returns the handler for GET /api/v1/assets/{assetID}.
// The latest rendition is attached when one exists.
func NewGetAssetHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := uuid.Parse(chi.URLParam(r, "assetID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"assetID must be a valid UUID", nil)
			return
		}

		asset, err := s.GetAsset(r.Context(), assetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Asset not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch asset", nil)
			return
		}

		detail := assetDetailResponse{Asset: asset}
		rendition, err := s.GetLatestRendition(r.Context(), assetID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch rendition", nil)
			return
		}
		if err == nil {
			detail.Rendition = rendition
		}

		response.JSON(w, detail)
	}
}
