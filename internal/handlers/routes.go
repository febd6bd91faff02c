package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/platform/analytics"
	"github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/progress"
)

// Deps carries everything the activity routes need.
type Deps struct {
	Store     progress.Store
	Catalog   catalog.Catalog
	Publisher *EventPublisher
	Analytics *analytics.Publisher
	Verifier  auth.JWTVerifier
}

// MountRoutes attaches the authenticated v1 surface to r.
func MountRoutes(r chi.Router, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(d.Verifier))

		r.Put("/v1/progress", UpsertProgress(d.Store, d.Publisher, d.Analytics))
		r.Get("/v1/continue-watching", ContinueWatching(d.Store, d.Catalog))
		r.Get("/v1/progress/{content_id}", GetProgress(d.Store))
		r.Delete("/v1/progress/{content_id}", RemoveProgress(d.Store, d.Analytics))
		r.Get("/v1/episodes/{episode_id}/next", NextEpisode(d.Catalog, d.Analytics))
	})
}
