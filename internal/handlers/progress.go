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
	"github.com/example/ott-platform/internal/progress"
	"github.com/example/ott-platform/internal/worker"
)

type upsertProgressRequest struct {
	ContentID       string `json:"content_id"`
	PositionSeconds int    `json:"position_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
}

type progressResponse struct {
	ContentID       string `json:"content_id"`
	ProgressSeconds int    `json:"progress_seconds"`
	Completed       bool   `json:"completed"`
	UpdatedAtMs     int64  `json:"updated_at_ms"`
}

type continueContent struct {
	ContentID       string `json:"content_id"`
	Title           string `json:"title"`
	Kind            string `json:"kind"`
	DurationSeconds int    `json:"duration_seconds"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	SeriesID        string `json:"series_id,omitempty"`
	SeasonNumber    int    `json:"season_number,omitempty"`
	EpisodeNumber   int    `json:"episode_number,omitempty"`
}

type continueItem struct {
	Content  continueContent  `json:"content"`
	Progress progressResponse `json:"progress"`
}

type continueResponse struct {
	Items []continueItem `json:"items"`
	Limit int            `json:"limit"`
}

func toProgressResponse(rec progress.Record) progressResponse {
	return progressResponse{
		ContentID:       rec.ContentID,
		ProgressSeconds: rec.ProgressSeconds,
		Completed:       rec.Completed,
		UpdatedAtMs:     rec.UpdatedAt.UnixMilli(),
	}
}

func toContinueContent(rec catalog.ContentRecord) continueContent {
	return continueContent{
		ContentID:       rec.ID,
		Title:           rec.Title,
		Kind:            string(rec.Kind),
		DurationSeconds: rec.DurationSeconds,
		ThumbnailURL:    rec.ThumbnailURL,
		SeriesID:        rec.SeriesID,
		SeasonNumber:    rec.SeasonNumber,
		EpisodeNumber:   rec.EpisodeNumber,
	}
}

// UpsertProgress writes the caller's playhead. With JetStream configured and
// async writes enabled the event is queued and the request acknowledged with
// 202; otherwise the row is written before responding.
func UpsertProgress(store progress.Store, publisher *EventPublisher, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || strings.TrimSpace(uid) == "" {
			api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
			return
		}

		var req upsertProgressRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		contentID := strings.TrimSpace(req.ContentID)
		if contentID == "" {
			api.BadRequest(w, "VALIDATION", "content_id is required", rid, nil)
			return
		}

		if publisher.Enabled() {
			payload := map[string]any{
				"user_id":          uid,
				"content_id":       contentID,
				"position_seconds": req.PositionSeconds,
				"duration_seconds": req.DurationSeconds,
			}
			eventID, err := publisher.PublishJSON(worker.SubjectProgress, payload)
			if err != nil {
				api.WriteError(w, http.StatusServiceUnavailable, "EVENT_PUBLISH_FAILED", "failed to publish event", rid, nil)
				return
			}
			w.Header().Set("X-Event-ID", eventID)
			w.WriteHeader(http.StatusAccepted)
			return
		}

		if err := store.Upsert(r.Context(), uid, contentID, req.PositionSeconds, req.DurationSeconds); err != nil {
			api.Internal(w, rid)
			return
		}
		rec, found, err := store.Get(r.Context(), uid, contentID)
		if err != nil || !found {
			api.Internal(w, rid)
			return
		}
		if rec.Completed {
			events.Publish(analytics.SubjectPlaybackCompleted, "playback_completed", uid, map[string]any{
				"content_id": contentID,
			})
		}
		api.WriteJSON(w, http.StatusOK, toProgressResponse(rec))
	}
}

// ContinueWatching returns the caller's resumable titles joined with catalog
// metadata, most recently watched first. Rows whose content no longer exists
// in the catalog are dropped from the response.
func ContinueWatching(store progress.Store, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || strings.TrimSpace(uid) == "" {
			api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
			return
		}

		recs, err := store.LoadRecent(r.Context(), uid)
		if err != nil {
			api.Internal(w, rid)
			return
		}

		out := continueResponse{Items: []continueItem{}, Limit: progress.ListCap}
		for _, rec := range recs {
			content, found, err := cat.FindByID(r.Context(), rec.ContentID)
			if err != nil {
				api.Internal(w, rid)
				return
			}
			if !found {
				continue
			}
			out.Items = append(out.Items, continueItem{
				Content:  toContinueContent(content),
				Progress: toProgressResponse(rec),
			})
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetProgress returns the stored record for one title, completed or not, so
// a rewatch can resume from the old position.
func GetProgress(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || strings.TrimSpace(uid) == "" {
			api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
			return
		}

		contentID := chi.URLParam(r, "content_id")
		rec, found, err := store.Get(r.Context(), uid, contentID)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		if !found {
			api.NotFound(w, "PROGRESS_NOT_FOUND", "No progress for this title", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, toProgressResponse(rec))
	}
}

// RemoveProgress deletes the caller's record for one title. Removing a title
// that was never watched is a success.
func RemoveProgress(store progress.Store, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || strings.TrimSpace(uid) == "" {
			api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
			return
		}

		contentID := chi.URLParam(r, "content_id")
		if err := store.Remove(r.Context(), uid, contentID); err != nil {
			api.Internal(w, rid)
			return
		}
		events.Publish(analytics.SubjectPlaybackRemoved, "playback_removed", uid, map[string]any{
			"content_id": contentID,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
