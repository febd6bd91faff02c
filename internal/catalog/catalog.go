// Package catalog exposes read-only lookups against the content catalog.
// The catalog is an external collaborator: this subsystem never writes to it.
package catalog

import "context"

type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

// ContentRecord is a single playable title: a movie, or one episode of a
// series. IDs are unique across both kinds.
type ContentRecord struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Kind            Kind   `json:"kind"`
	DurationSeconds int    `json:"duration_seconds"` // 0 means unknown
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`

	// Episode-only fields.
	SeriesID      string `json:"series_id,omitempty"`
	SeasonNumber  int    `json:"season_number,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
}

// Catalog is the lookup contract consumed by the progress and autoplay packages.
type Catalog interface {
	// FindByID returns the record for id, or ok=false when no such title exists.
	FindByID(ctx context.Context, id string) (ContentRecord, bool, error)
	// ListEpisodes returns a series' episodes ordered by season then episode number.
	ListEpisodes(ctx context.Context, seriesID string) ([]ContentRecord, error)
	// FindNextEpisode returns the episode following episodeID within its
	// series, crossing season boundaries. ok=false when episodeID is a movie,
	// unknown, or the final episode of its series.
	FindNextEpisode(ctx context.Context, episodeID string) (ContentRecord, bool, error)
}

// findNext implements FindNextEpisode on top of the other two lookups; both
// backends share it.
func findNext(ctx context.Context, c Catalog, episodeID string) (ContentRecord, bool, error) {
	rec, ok, err := c.FindByID(ctx, episodeID)
	if err != nil || !ok {
		return ContentRecord{}, false, err
	}
	if rec.Kind != KindEpisode || rec.SeriesID == "" {
		return ContentRecord{}, false, nil
	}

	episodes, err := c.ListEpisodes(ctx, rec.SeriesID)
	if err != nil {
		return ContentRecord{}, false, err
	}
	for i, ep := range episodes {
		if ep.ID == episodeID {
			if i+1 < len(episodes) {
				return episodes[i+1], true, nil
			}
			return ContentRecord{}, false, nil
		}
	}
	return ContentRecord{}, false, nil
}
