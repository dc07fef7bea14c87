package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

// Rebalanced is the HoldingsSource for a fixed-weight preset. The initial
// capital deploys on the first day any asset has a resolvable price; every
// later day redistributes value so each priced asset holds its target share.
// When some assets are unpriced, weights renormalize over the priced ones so
// the redistribution conserves their total value. Rebalancing trades carry no
// transaction cost, and the initial allocation bears no commission either.
type Rebalanced struct {
	preset   domain.Preset
	prices   valuation.PriceResolver
	start    time.Time
	started  bool
	lastDay  time.Time
	holdings map[string]float64
	symbols  []string
}

// NewRebalanced builds the source, failing hard when any asset has no usable
// price observation in the requested range.
func NewRebalanced(preset domain.Preset, start, end time.Time, prices valuation.PriceResolver) (*Rebalanced, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(preset.Assets))
	for _, a := range preset.Assets {
		symbols = append(symbols, domain.NormalizeSymbol(a.Symbol))
	}
	if err := requireHistory(prices, symbols, end); err != nil {
		return nil, err
	}
	return &Rebalanced{
		preset:   preset,
		prices:   prices,
		start:    domain.Day(start),
		holdings: make(map[string]float64, len(symbols)),
		symbols:  symbols,
	}, nil
}

// HoldingsAt deploys the capital on the first day a price is resolvable,
// then performs a full zero-cost rebalance for each new day.
func (r *Rebalanced) HoldingsAt(day time.Time) map[string]float64 {
	day = domain.Day(day)
	if !r.started {
		r.deploy(day)
		r.lastDay = day
		return r.holdings
	}
	if !day.After(r.lastDay) {
		return r.holdings
	}
	r.rebalance(day)
	r.lastDay = day
	return r.holdings
}

// deploy splits the initial capital across the assets priced on day, weights
// renormalized over just those assets. With nothing priced yet the capital
// stays undeployed and deploy runs again on the next day.
func (r *Rebalanced) deploy(day time.Time) {
	priced, pricedWeight := r.pricedOn(day)
	if pricedWeight == 0 {
		return
	}
	for _, a := range r.preset.Assets {
		sym := domain.NormalizeSymbol(a.Symbol)
		price, ok := priced[sym]
		if !ok {
			continue
		}
		r.holdings[sym] = r.preset.InitialCapital * a.Weight / pricedWeight / price
	}
	r.started = true
}

// rebalance values the current quantities at today's prices and redistributes
// so each priced asset holds its target share. Weights renormalize over the
// priced assets, which keeps the redistribution value-conserving; an asset
// without a resolvable price today keeps its quantity untouched.
func (r *Rebalanced) rebalance(day time.Time) {
	priced, pricedWeight := r.pricedOn(day)
	if pricedWeight == 0 {
		return
	}
	total := 0.0
	for sym, price := range priced {
		total += r.holdings[sym] * price
	}
	if total <= 0 {
		return
	}
	for _, a := range r.preset.Assets {
		sym := domain.NormalizeSymbol(a.Symbol)
		price, ok := priced[sym]
		if !ok {
			continue
		}
		r.holdings[sym] = total * a.Weight / pricedWeight / price
	}
}

// pricedOn returns today's resolvable prices per symbol and the summed target
// weight of those symbols.
func (r *Rebalanced) pricedOn(day time.Time) (map[string]float64, float64) {
	priced := make(map[string]float64, len(r.preset.Assets))
	weight := 0.0
	for _, a := range r.preset.Assets {
		sym := domain.NormalizeSymbol(a.Symbol)
		price, ok := r.prices.PriceOn(sym, day)
		if !ok || price <= 0 {
			continue
		}
		priced[sym] = price
		weight += a.Weight
	}
	return priced, weight
}

// InvestedAt returns the preset's initial capital from the range start onward;
// the capital is committed even while it waits for a first price.
func (r *Rebalanced) InvestedAt(day time.Time) decimal.Decimal {
	if domain.Day(day).Before(r.start) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(r.preset.InitialCapital)
}

// Symbols returns the preset's assets.
func (r *Rebalanced) Symbols() []string { return r.symbols }
