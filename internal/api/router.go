package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/AkhilTej3/anime-storyboard/internal/api/middleware"
	"github.com/AkhilTej3/anime-storyboard/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	GenerateImage       http.HandlerFunc
	GenerateProjectPack http.HandlerFunc
	GenerateStoryboard  http.HandlerFunc

	GetJobHandler http.HandlerFunc

	ListAssetsHandler http.HandlerFunc
	GetAssetHandler   http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		// Generation endpoints require the generate scope; reads only
		// need a valid key.
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("generate"))

			r.Post("/api/v1/generate/image", orNotImplemented(deps.GenerateImage))
			r.Post("/api/v1/generate/project-pack", orNotImplemented(deps.GenerateProjectPack))
			r.Post("/api/v1/generate/storyboard", orNotImplemented(deps.GenerateStoryboard))
		})

		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))

		r.Get("/api/v1/assets", orNotImplemented(deps.ListAssetsHandler))
		r.Get("/api/v1/assets/{assetID}", orNotImplemented(deps.GetAssetHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
