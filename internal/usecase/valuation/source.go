package valuation

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingsSource produces the holdings-per-date series the engine values.
// Real portfolios, DCA, HODL and rebalanced presets all implement it, so the
// engine depends on one capability instead of four near-duplicate walks.
//
// Sources may keep an internal cursor: days must be requested in
// non-decreasing order, which is how the engine's single forward pass calls
// them. The returned map is owned by the source and must not be mutated or
// retained across calls.
type HoldingsSource interface {
	// HoldingsAt returns the signed quantity held per symbol at end of day.
	HoldingsAt(day time.Time) map[string]float64

	// InvestedAt returns the capital committed up to and including day.
	InvestedAt(day time.Time) decimal.Decimal

	// Symbols returns every symbol the source can ever hold.
	Symbols() []string
}

// PriceResolver is the engine's view of price resolution.
// *pricing.Resolver satisfies it.
type PriceResolver interface {
	PriceOn(symbol string, day time.Time) (float64, bool)
}
