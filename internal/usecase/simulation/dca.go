package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

// Allocation is one leg of a periodic purchase. Percents across a plan's
// allocations must sum to 100.
type Allocation struct {
	Symbol  string
	Percent float64
}

// Plan describes a dollar-cost-averaging schedule: a fixed USD amount spent
// every IntervalDays from Start through End inclusive, split across one or
// two assets, each executed purchase reduced by CommissionRate.
type Plan struct {
	Start          time.Time
	End            time.Time
	Amount         decimal.Decimal
	IntervalDays   int
	CommissionRate float64
	Allocations    []Allocation
}

// Validate checks the plan's parameters.
func (p *Plan) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.NewValidationError("amount", "must be positive")
	}
	if p.IntervalDays <= 0 {
		return domain.NewValidationError("interval", "must be positive")
	}
	if p.CommissionRate < 0 || p.CommissionRate >= 1 {
		return domain.NewValidationError("commission_rate", "must be in [0, 1)")
	}
	if len(p.Allocations) == 0 || len(p.Allocations) > 2 {
		return domain.NewValidationError("allocations", "must have one or two assets")
	}
	total := 0.0
	for _, a := range p.Allocations {
		if domain.NormalizeSymbol(a.Symbol) == "" {
			return domain.NewValidationError("allocations", "asset symbol cannot be empty")
		}
		if a.Percent <= 0 {
			return domain.NewValidationError("allocations", "split percent must be positive")
		}
		total += a.Percent
	}
	// Same float tolerance as Preset.Validate.
	if total < 99.999 || total > 100.001 {
		return domain.NewValidationError("allocations", "split percents must sum to 100")
	}
	if domain.Day(p.Start).After(domain.Day(p.End)) {
		return domain.ErrInvalidRange
	}
	return nil
}

// PurchaseDates returns every scheduled purchase day: Start, then every
// IntervalDays, through End inclusive.
func (p *Plan) PurchaseDates() []time.Time {
	var dates []time.Time
	end := domain.Day(p.End)
	for d := domain.Day(p.Start); !d.After(end); d = d.AddDate(0, 0, p.IntervalDays) {
		dates = append(dates, d)
	}
	return dates
}

// symbols returns the plan's normalized asset symbols.
func (p *Plan) symbols() []string {
	out := make([]string, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		out = append(out, domain.NormalizeSymbol(a.Symbol))
	}
	return out
}

// DCA is the HoldingsSource for a dollar-cost-averaging schedule. Holdings
// stay flat between purchase dates; invested-to-date advances on every
// scheduled date whether or not a price was resolvable, while commission is
// deducted only from amounts that actually execute.
type DCA struct {
	plan     Plan
	prices   valuation.PriceResolver
	schedule []time.Time
	cursor   int
	holdings map[string]float64
	symbols  []string
}

// NewDCA validates the plan and checks that every asset has at least one
// usable price observation in range; a symbol with none is a hard failure.
func NewDCA(plan Plan, prices valuation.PriceResolver) (*DCA, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := requireHistory(prices, plan.symbols(), plan.End); err != nil {
		return nil, err
	}
	return &DCA{
		plan:     plan,
		prices:   prices,
		schedule: plan.PurchaseDates(),
		holdings: make(map[string]float64, len(plan.Allocations)),
		symbols:  plan.symbols(),
	}, nil
}

// HoldingsAt executes every scheduled purchase dated on or before day.
func (d *DCA) HoldingsAt(day time.Time) map[string]float64 {
	day = domain.Day(day)
	for d.cursor < len(d.schedule) && !d.schedule[d.cursor].After(day) {
		on := d.schedule[d.cursor]
		for _, a := range d.plan.Allocations {
			sym := domain.NormalizeSymbol(a.Symbol)
			price, ok := d.prices.PriceOn(sym, on)
			if !ok || price <= 0 {
				continue // invested still advances; the purchase is skipped
			}
			legAmount := d.plan.Amount.InexactFloat64() * a.Percent / 100
			d.holdings[sym] += legAmount * (1 - d.plan.CommissionRate) / price
		}
		d.cursor++
	}
	return d.holdings
}

// InvestedAt returns Amount times the number of scheduled dates on or before
// day, independent of whether those purchases executed.
func (d *DCA) InvestedAt(day time.Time) decimal.Decimal {
	day = domain.Day(day)
	n := 0
	for _, on := range d.schedule {
		if on.After(day) {
			break
		}
		n++
	}
	return d.plan.Amount.Mul(decimal.NewFromInt(int64(n)))
}

// Symbols returns the plan's assets.
func (d *DCA) Symbols() []string { return d.symbols }

// requireHistory fails with ErrNoPriceData for the first symbol that has no
// observation at or before end, i.e. none usable anywhere in the range.
func requireHistory(prices valuation.PriceResolver, symbols []string, end time.Time) error {
	for _, sym := range symbols {
		if _, ok := prices.PriceOn(sym, domain.Day(end)); !ok {
			return domain.NoPriceDataError(sym)
		}
	}
	return nil
}
