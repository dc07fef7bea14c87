package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new historical price repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

// GetHistoricalPrices retrieves daily closes for a symbol between start and
// end inclusive, sorted ascending by day. Days without an observation are
// absent; the resolver carries the prior close forward across them.
func (r *priceRepository) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]*domain.PricePoint, error) {
	query := `
		SELECT symbol, day, close
		FROM price_history
		WHERE symbol = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query,
		domain.NormalizeSymbol(symbol),
		domain.Day(start),
		domain.Day(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		p.Date = domain.Day(p.Date)
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price history: %w", err)
	}

	return points, nil
}
