package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AkhilTej3/anime-storyboard/internal/api/response"
	"github.com/AkhilTej3/anime-storyboard/internal/cache"
	"github.com/AkhilTej3/anime-storyboard/internal/store"
	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

type jobPollResponse struct {
	ID           uuid.UUID  `json:"id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Kind         string     `json:"kind,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewGetJobHandler returns the handler for GET /api/v1/jobs/{jobID}.
// Running jobs are answered from the Redis snapshot when present so
// frequent polls skip the database; terminal and uncached jobs come from
// the store.
func NewGetJobHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"jobID must be a valid UUID", nil)
			return
		}

		state, ok, err := c.GetJobState(r.Context(), jobID)
		if err == nil && ok && state.Status == models.JobStatusRunning {
			response.JSON(w, jobPollResponse{
				ID:       jobID,
				Status:   state.Status,
				Progress: state.Progress,
			})
			return
		}

		job, err := s.GetJob(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch job", nil)
			return
		}

		createdAt := job.CreatedAt
		response.JSON(w, jobPollResponse{
			ID:           job.ID,
			Status:       job.Status,
			Progress:     job.Progress,
			Kind:         job.Kind,
			ErrorMessage: job.ErrorMessage,
			CreatedAt:    &createdAt,
			CompletedAt:  job.CompletedAt,
		})
	}
}
