package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the catalog reads through.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCatalog reads the content table. The table is owned by the catalog
// service; this side never writes to it.
type PostgresCatalog struct {
	db Querier
}

func NewPostgresCatalog(db Querier) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const contentColumns = `id, title, kind, duration_seconds, thumbnail_url,
COALESCE(series_id, ''), COALESCE(season_number, 0), COALESCE(episode_number, 0)`

func (c *PostgresCatalog) FindByID(ctx context.Context, id string) (ContentRecord, bool, error) {
	row := c.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	rec, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContentRecord{}, false, nil
		}
		return ContentRecord{}, false, fmt.Errorf("find content %s: %w", id, err)
	}
	return rec, true, nil
}

func (c *PostgresCatalog) ListEpisodes(ctx context.Context, seriesID string) ([]ContentRecord, error) {
	rows, err := c.db.Query(ctx, `
SELECT `+contentColumns+`
FROM content
WHERE series_id = $1 AND kind = 'episode'
ORDER BY season_number, episode_number`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list episodes %s: %w", seriesID, err)
	}
	defer rows.Close()

	var out []ContentRecord
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("list episodes %s: %w", seriesID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *PostgresCatalog) FindNextEpisode(ctx context.Context, episodeID string) (ContentRecord, bool, error) {
	return findNext(ctx, c, episodeID)
}

func scanContent(row pgx.Row) (ContentRecord, error) {
	var rec ContentRecord
	err := row.Scan(&rec.ID, &rec.Title, &rec.Kind, &rec.DurationSeconds,
		&rec.ThumbnailURL, &rec.SeriesID, &rec.SeasonNumber, &rec.EpisodeNumber)
	return rec, err
}
