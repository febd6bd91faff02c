package catalog

import (
	"context"
	"fmt"
	"sort"
)

// MemoryCatalog serves lookups from an in-memory index. It backs the demo
// catalog (loaded from a JSON file) and test fixtures.
type MemoryCatalog struct {
	byID   map[string]ContentRecord
	series map[string][]ContentRecord // sorted by season, then episode number
}

// NewMemoryCatalog indexes records for lookup. Duplicate ids are an error:
// content ids are unique across movies and episodes.
func NewMemoryCatalog(records []ContentRecord) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		byID:   make(map[string]ContentRecord, len(records)),
		series: make(map[string][]ContentRecord),
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("catalog record without id (title %q)", rec.Title)
		}
		if _, exists := c.byID[rec.ID]; exists {
			return nil, fmt.Errorf("duplicate catalog id %q", rec.ID)
		}
		c.byID[rec.ID] = rec
		if rec.Kind == KindEpisode && rec.SeriesID != "" {
			c.series[rec.SeriesID] = append(c.series[rec.SeriesID], rec)
		}
	}
	for _, eps := range c.series {
		sort.Slice(eps, func(i, j int) bool {
			if eps[i].SeasonNumber != eps[j].SeasonNumber {
				return eps[i].SeasonNumber < eps[j].SeasonNumber
			}
			return eps[i].EpisodeNumber < eps[j].EpisodeNumber
		})
	}
	return c, nil
}

func (c *MemoryCatalog) FindByID(_ context.Context, id string) (ContentRecord, bool, error) {
	rec, ok := c.byID[id]
	return rec, ok, nil
}

func (c *MemoryCatalog) ListEpisodes(_ context.Context, seriesID string) ([]ContentRecord, error) {
	eps := c.series[seriesID]
	out := make([]ContentRecord, len(eps))
	copy(out, eps)
	return out, nil
}

func (c *MemoryCatalog) FindNextEpisode(ctx context.Context, episodeID string) (ContentRecord, bool, error) {
	return findNext(ctx, c, episodeID)
}
