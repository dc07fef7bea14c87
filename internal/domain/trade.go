package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// maxSymbolLen bounds normalized ticker symbols.
const maxSymbolLen = 10

// Trade represents a single executed buy or sell in the domain layer.
// Trades are append-only: once persisted they are never updated, and they are
// removed only when their whole portfolio is removed.
type Trade struct {
	ID          uuid.UUID
	PortfolioID uuid.UUID
	Symbol      string // normalized uppercase ticker
	Side        TradeSide
	Quantity    float64 // units of the asset, > 0
	Price       float64 // unit price in USD at execution, > 0
	Fee         float64 // flat fee in USD, >= 0
	ExecutedAt  time.Time
	Exchange    string
	SourceID    string // external identifier from exchange sync, optional
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Validate ensures the trade adheres to domain rules.
// Returns a *ValidationError if any field is out of range.
func (t *Trade) Validate() error {
	symbol := NormalizeSymbol(t.Symbol)
	if symbol == "" {
		return NewValidationError("symbol", "cannot be empty")
	}
	if len(symbol) > maxSymbolLen {
		return NewValidationError("symbol", "exceeds 10 characters")
	}
	if t.Side != TradeSideBuy && t.Side != TradeSideSell {
		return NewValidationError("side", "must be BUY or SELL")
	}
	if t.Quantity <= 0 {
		return NewValidationError("quantity", "must be positive")
	}
	if t.Price <= 0 {
		return NewValidationError("price", "must be positive")
	}
	if t.Fee < 0 {
		return NewValidationError("fee", "cannot be negative")
	}
	if t.ExecutedAt.IsZero() {
		return NewValidationError("executed_at", "cannot be zero")
	}
	return nil
}

// SignedQuantity returns the quantity with its sign: positive for buys,
// negative for sells.
func (t *Trade) SignedQuantity() float64 {
	if t.Side == TradeSideSell {
		return -t.Quantity
	}
	return t.Quantity
}

// CostDelta returns the change in net invested capital caused by this trade:
// buys add cost plus fee, sells subtract proceeds net of fee.
func (t *Trade) CostDelta() float64 {
	gross := t.Quantity * t.Price
	if t.Side == TradeSideSell {
		return -(gross - t.Fee)
	}
	return gross + t.Fee
}
