// Package idempotency provides deduplication for progress event IDs so a
// redelivered event never applies the same write twice.
//
// Primary backend: Redis SETNX with TTL. Fallback: Postgres
// INSERT ... ON CONFLICT against processed_events. If neither is available,
// an in-memory store is used (development only).
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store checks whether an event has already been processed and marks it.
type Store interface {
	// Check returns true if eventID was already processed.
	// If not seen, it atomically marks it as processed.
	Check(ctx context.Context, eventID string) (duplicate bool, err error)
}

// NewStore creates the best available idempotency store:
// Redis > Postgres > in-memory (dev fallback). The Postgres variant shares
// the service's pool. When isProd is true the in-memory fallback is refused.
func NewStore(redisDSN string, pool *pgxpool.Pool, ttl time.Duration, isProd bool) (Store, error) {
	if redisDSN != "" {
		return newRedisStore(redisDSN, ttl), nil
	}
	if pool != nil {
		return newPostgresStore(pool), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_DSN or a database for idempotency; in-memory store is not allowed")
	}
	return newMemoryStore(), nil
}
