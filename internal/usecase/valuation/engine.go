package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// Valuate walks every calendar day from start through end (both inclusive,
// UTC midnights) and values the source's holdings with the resolver. It is
// the single valuation path shared by real-portfolio curves and every
// simulation strategy.
//
// A day on which a held symbol has no resolvable price contributes 0 for that
// symbol and is recorded as a warning; it never aborts the curve. Internal
// accumulation is unrounded; monetary values round to 2 decimal places and
// holdings to 8 only at the point boundary.
func Valuate(src HoldingsSource, prices PriceResolver, start, end time.Time) ([]domain.EquityCurvePoint, []domain.PriceGapWarning, error) {
	start, end = domain.Day(start), domain.Day(end)
	if start.After(end) {
		return nil, nil, domain.ErrInvalidRange
	}

	symbols := src.Symbols()
	points := make([]domain.EquityCurvePoint, 0, domain.DaysBetween(start, end))
	var warnings []domain.PriceGapWarning

	for day := start; !day.After(end); day = domain.NextDay(day) {
		holdings := src.HoldingsAt(day)
		breakdown := make(map[string]domain.PositionValue, len(symbols))
		total := 0.0

		for _, sym := range symbols {
			qty := holdings[sym]
			price, ok := prices.PriceOn(sym, day)

			value := 0.0
			if qty != 0 {
				if ok {
					value = qty * price
				} else {
					warnings = append(warnings, domain.PriceGapWarning{Date: day, Symbol: sym})
				}
			}
			total += value

			breakdown[sym] = domain.PositionValue{
				Holdings: RoundQuantity(qty),
				Price:    RoundMoney(price),
				Value:    RoundMoney(value),
			}
		}

		points = append(points, domain.EquityCurvePoint{
			Date:       day,
			TotalValue: RoundMoney(total),
			Breakdown:  breakdown,
		})
	}

	return points, warnings, nil
}

// RoundMoney rounds a monetary value to 2 decimal places.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundQuantity rounds an asset quantity to 8 decimal places.
func RoundQuantity(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(8).Float64()
	return f
}
