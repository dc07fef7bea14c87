package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TradeRepository defines the interface for trade persistence operations
type TradeRepository interface {
	// ListByPortfolio retrieves all trades of a portfolio sorted ascending
	// by execution timestamp (ties broken by insertion order)
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*Trade, error)

	// CreateBatch persists a batch of trades atomically
	CreateBatch(ctx context.Context, trades []*Trade) error

	// CountByPortfolio returns the number of trades owned by a portfolio
	CountByPortfolio(ctx context.Context, portfolioID uuid.UUID) (int, error)
}

// PriceRepository defines the interface for historical price lookups
type PriceRepository interface {
	// GetHistoricalPrices retrieves daily closes for a symbol between start
	// and end (inclusive), sorted ascending by day. Days without an
	// observation are simply absent.
	GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]*PricePoint, error)
}

// CacheStore defines the primitives both cache tiers expose: the in-process
// tier for the most expensive full-history computation and the shared tier
// for simulation and aggregate-view results. Population is idempotent
// last-writer-wins; a racing duplicate recomputation is wasted work, not a
// correctness bug.
type CacheStore interface {
	// Get retrieves a payload by key; the bool reports a fresh hit
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under key with the given time-to-live
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// DeleteByPrefix removes every entry whose key starts with prefix
	DeleteByPrefix(ctx context.Context, prefix string) error
}
