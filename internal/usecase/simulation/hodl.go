package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

// HODL is the HoldingsSource for buy-and-hold: one lump purchase on the first
// day of the range, sized to the total an equivalent DCA schedule would have
// spent, so the two strategies are economically comparable over the same
// horizon. Commission applies to the lump exactly as it would to each DCA
// purchase.
type HODL struct {
	plan     Plan
	prices   valuation.PriceResolver
	total    decimal.Decimal
	start    time.Time
	bought   bool
	holdings map[string]float64
	symbols  []string
}

// NewHODL builds the lump-sum counterpart of the given DCA plan.
func NewHODL(plan Plan, prices valuation.PriceResolver) (*HODL, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := requireHistory(prices, plan.symbols(), plan.End); err != nil {
		return nil, err
	}
	purchases := int64(len(plan.PurchaseDates()))
	return &HODL{
		plan:     plan,
		prices:   prices,
		total:    plan.Amount.Mul(decimal.NewFromInt(purchases)),
		start:    domain.Day(plan.Start),
		holdings: make(map[string]float64, len(plan.Allocations)),
		symbols:  plan.symbols(),
	}, nil
}

// HoldingsAt executes the single lump purchase once day reaches the start.
func (h *HODL) HoldingsAt(day time.Time) map[string]float64 {
	if !h.bought && !domain.Day(day).Before(h.start) {
		for _, a := range h.plan.Allocations {
			sym := domain.NormalizeSymbol(a.Symbol)
			price, ok := h.prices.PriceOn(sym, h.start)
			if !ok || price <= 0 {
				continue
			}
			legAmount := h.total.InexactFloat64() * a.Percent / 100
			h.holdings[sym] = legAmount * (1 - h.plan.CommissionRate) / price
		}
		h.bought = true
	}
	return h.holdings
}

// InvestedAt returns the full lump from the start day onward.
func (h *HODL) InvestedAt(day time.Time) decimal.Decimal {
	if domain.Day(day).Before(h.start) {
		return decimal.Zero
	}
	return h.total
}

// Symbols returns the plan's assets.
func (h *HODL) Symbols() []string { return h.symbols }
