package progress

import "context"

// Store is the persistence contract for playback progress. Two backends
// exist: the authenticated Postgres store and the anonymous local file
// store. Which one a session uses is decided once, by identity state, not
// by inspecting values at call sites.
type Store interface {
	// LoadRecent returns the owner's unfinished records, most recent first,
	// capped at ListCap.
	LoadRecent(ctx context.Context, ownerID string) ([]Record, error)
	// Upsert records a playback position, replacing any existing record for
	// contentID. Completion is derived here from the duration, never set by
	// callers.
	Upsert(ctx context.Context, ownerID, contentID string, progressSeconds, durationSeconds int) error
	// Get returns the stored record regardless of completion state.
	Get(ctx context.Context, ownerID, contentID string) (Record, bool, error)
	// Remove deletes the record. Removing an absent record is not an error.
	Remove(ctx context.Context, ownerID, contentID string) error
}
