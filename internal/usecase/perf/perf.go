// Package perf computes risk/return statistics over daily value series.
// There is exactly one implementation, applied identically to real-portfolio
// curves and simulated ones.
package perf

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

const daysPerYear = 365.0

// Summary bundles the headline metrics for one value series.
type Summary struct {
	EndValue    float64 `json:"end_value"`
	Invested    float64 `json:"invested"`
	PnL         float64 `json:"pnl"`
	PnLPercent  float64 `json:"pnl_percent"`
	MaxDrawdown float64 `json:"max_drawdown"` // percent decline from running peak
	Volatility  float64 `json:"volatility"`   // annualized, percent
	CAGR        float64 `json:"cagr"`         // percent
}

// Summarize computes the full metric set for a daily value series spanning
// len(values) calendar days, with the given total invested capital.
func Summarize(values []float64, invested decimal.Decimal) Summary {
	if len(values) == 0 {
		return Summary{Invested: roundMoney(invested.InexactFloat64())}
	}
	last := values[len(values)-1]
	pnl, pnlPct := PnL(last, invested)
	return Summary{
		EndValue:    roundMoney(last),
		Invested:    roundMoney(invested.InexactFloat64()),
		PnL:         roundMoney(pnl),
		PnLPercent:  pnlPct,
		MaxDrawdown: MaxDrawdown(values),
		Volatility:  Volatility(values),
		CAGR:        CAGR(values[0], last, len(values)),
	}
}

// PnL returns profit/loss against invested capital, absolute and in percent.
// The percentage is 0 when nothing was invested.
func PnL(last float64, invested decimal.Decimal) (pnl, pct float64) {
	inv := invested.InexactFloat64()
	pnl = last - inv
	if inv > 0 {
		pct = pnl / inv * 100
	}
	return pnl, pct
}

// MaxDrawdown scans left to right and returns the largest percentage decline
// from the running peak. A monotonically non-decreasing series yields 0.
func MaxDrawdown(values []float64) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// Volatility is the population standard deviation of day-over-day percentage
// returns, annualized by sqrt(365), in percent. Days with a zero prior value
// are skipped (a return is undefined there).
func Volatility(values []float64) float64 {
	returns := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(daysPerYear) * 100
}

// CAGR is the compound annual growth rate between start and end over the
// given number of calendar days, in percent. Defined as 0 when start <= 0 or
// the span is not positive.
func CAGR(start, end float64, days int) float64 {
	years := float64(days) / daysPerYear
	if start <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/years) - 1) * 100
}

// EquityStats summarizes an equity curve for the stats endpoint.
type EquityStats struct {
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
	MaxValue           float64 `json:"max_value"`
	MinValue           float64 `json:"min_value"`
	AvgValue           float64 `json:"avg_value"`
	MaxDrawdown        float64 `json:"max_drawdown"`
}

// ComputeEquityStats derives descriptive statistics from curve points.
func ComputeEquityStats(points []domain.EquityCurvePoint) EquityStats {
	if len(points) == 0 {
		return EquityStats{}
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.TotalValue
	}

	first, last := values[0], values[len(values)-1]
	maxV, minV, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
		sum += v
	}

	ret := last - first
	retPct := 0.0
	if first > 0 {
		retPct = ret / first * 100
	}

	return EquityStats{
		TotalReturn:        roundMoney(ret),
		TotalReturnPercent: retPct,
		MaxValue:           maxV,
		MinValue:           minV,
		AvgValue:           roundMoney(sum / float64(len(values))),
		MaxDrawdown:        MaxDrawdown(values),
	}
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
