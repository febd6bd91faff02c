package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the authenticated backend: one watch_history row per
// (user, content) pair, upserted in place.
type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LoadRecent(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
SELECT content_id, progress_seconds, completed, updated_at
FROM watch_history
WHERE user_id = $1 AND NOT completed
ORDER BY updated_at DESC
LIMIT $2`, ownerID, ListCap)
	if err != nil {
		return nil, fmt.Errorf("load recent progress: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ContentID, &r.ProgressSeconds, &r.Completed, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("load recent progress: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Upsert(ctx context.Context, ownerID, contentID string, progressSeconds, durationSeconds int) error {
	if progressSeconds < 0 {
		progressSeconds = 0
	}
	completed := IsCompleted(progressSeconds, durationSeconds)

	_, err := s.db.Exec(ctx, `
INSERT INTO watch_history (user_id, content_id, progress_seconds, completed, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, content_id)
DO UPDATE SET
  progress_seconds = EXCLUDED.progress_seconds,
  completed        = EXCLUDED.completed,
  updated_at       = EXCLUDED.updated_at`,
		ownerID, contentID, progressSeconds, completed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ownerID, contentID string) (Record, bool, error) {
	var r Record
	err := s.db.QueryRow(ctx, `
SELECT content_id, progress_seconds, completed, updated_at
FROM watch_history
WHERE user_id = $1 AND content_id = $2`, ownerID, contentID).
		Scan(&r.ContentID, &r.ProgressSeconds, &r.Completed, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("get progress: %w", err)
	}
	return r, true, nil
}

func (s *PostgresStore) Remove(ctx context.Context, ownerID, contentID string) error {
	// Deleting an absent row affects zero rows; that is the idempotency we want.
	_, err := s.db.Exec(ctx, `DELETE FROM watch_history WHERE user_id = $1 AND content_id = $2`,
		ownerID, contentID)
	if err != nil {
		return fmt.Errorf("remove progress: %w", err)
	}
	return nil
}
