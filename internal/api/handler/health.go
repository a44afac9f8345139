package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/AkhilTej3/anime-storyboard/internal/api/response"
	"github.com/AkhilTej3/anime-storyboard/internal/cache"
	"github.com/AkhilTej3/anime-storyboard/internal/store"
)

// NewHealthHandler returns the handler for GET /api/v1/health. Reports
// component status; overall 503 when any dependency is down.
func NewHealthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}
		healthy := true

		if err := s.Ping(ctx); err != nil {
			components["database"] = "unavailable"
			healthy = false
		}
		if err := c.Ping(ctx); err != nil {
			components["cache"] = "unavailable"
			healthy = false
		}

		if !healthy {
			response.Error(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
				"One or more dependencies are unavailable", components)
			return
		}

		response.JSON(w, map[string]any{
			"status":     "ok",
			"components": components,
		})
	}
}
