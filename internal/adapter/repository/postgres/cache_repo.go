package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// cacheRepository implements domain.CacheStore on a Postgres table. It is the
// shared tier backing simulation and aggregate-view results across processes.
// Upserts are last-writer-wins, matching the idempotent-population contract.
type cacheRepository struct {
	db *DB
}

// NewCacheRepository creates a new shared cache repository
func NewCacheRepository(db *DB) domain.CacheStore {
	return &cacheRepository{db: db}
}

// Get retrieves a payload by key; expired entries are misses.
func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
		SELECT payload FROM cache_entries
		WHERE key = $1 AND expires_at > NOW()
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload under key with the given TTL, replacing any previous
// entry.
func (r *cacheRepository) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	query := `
		INSERT INTO cache_entries (key, payload, created_at, expires_at)
		VALUES ($1, $2, NOW(), NOW() + $3 * INTERVAL '1 second')
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, payload, int64(ttl.Seconds())); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (r *cacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	query := `DELETE FROM cache_entries WHERE key LIKE $1 || '%'`
	if _, err := r.db.ExecContext(ctx, query, prefix); err != nil {
		return fmt.Errorf("failed to sweep cache entries: %w", err)
	}
	return nil
}
