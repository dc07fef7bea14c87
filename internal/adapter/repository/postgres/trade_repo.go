package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// tradeRepository implements domain.TradeRepository
type tradeRepository struct {
	db *DB
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *DB) domain.TradeRepository {
	return &tradeRepository{db: db}
}

// ListByPortfolio retrieves all trades of a portfolio sorted ascending by
// execution timestamp. The id tie-break keeps same-timestamp trades in a
// stable order across queries.
func (r *tradeRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Trade, error) {
	query := `
		SELECT id, portfolio_id, symbol, side, quantity, price, fee, executed_at, exchange, source_id
		FROM trades
		WHERE portfolio_id = $1
		ORDER BY executed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Symbol,
			&t.Side,
			&t.Quantity,
			&t.Price,
			&t.Fee,
			&t.ExecutedAt,
			&t.Exchange,
			&t.SourceID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.ExecutedAt = t.ExecutedAt.UTC()
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

// CreateBatch persists a batch of trades in a single transaction.
func (r *tradeRepository) CreateBatch(ctx context.Context, trades []*domain.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO trades (id, portfolio_id, symbol, side, quantity, price, fee, executed_at, exchange, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, t := range trades {
		if _, err := tx.ExecContext(ctx, query,
			t.ID,
			t.PortfolioID,
			t.Symbol,
			t.Side,
			t.Quantity,
			t.Price,
			t.Fee,
			t.ExecutedAt.UTC(),
			t.Exchange,
			t.SourceID,
		); err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}
	return nil
}

// CountByPortfolio returns the number of trades owned by a portfolio.
func (r *tradeRepository) CountByPortfolio(ctx context.Context, portfolioID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM trades WHERE portfolio_id = $1`
	if err := r.db.QueryRowContext(ctx, query, portfolioID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}
