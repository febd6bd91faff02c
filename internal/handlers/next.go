package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/platform/analytics"
	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/httpserver"
)

// NextEpisode resolves what plays after the given episode. Movies, unknown
// ids, and final episodes answer 404: the player simply shows no up-next card.
func NextEpisode(cat catalog.Catalog, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, _ := auth.UserIDFromContext(r.Context())

		episodeID := strings.TrimSpace(chi.URLParam(r, "episode_id"))
		next, ok, err := cat.FindNextEpisode(r.Context(), episodeID)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		if !ok {
			api.NotFound(w, "NO_NEXT_EPISODE", "Nothing plays next", rid)
			return
		}

		events.Publish(analytics.SubjectAutoplayResolved, "autoplay_resolved", uid, map[string]any{
			"content_id": episodeID,
			"next_id":    next.ID,
		})
		api.WriteJSON(w, http.StatusOK, toContinueContent(next))
	}
}
