package valuation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// TradeReplay is the HoldingsSource for real portfolios: it replays an
// append-only trade list in timestamp order, producing the running signed
// quantity per symbol for each day.
//
// The replay is a single O(trades + dates) pass. The cursor only ever moves
// forward; trades sharing a timestamp apply in input order, which is the
// repository's stable sort order.
type TradeReplay struct {
	trades   []*domain.Trade
	cursor   int
	holdings map[string]float64
	symbols  []string

	// invested tracking advances on its own forward-only cursor so that a
	// second walk over already-valued days can read invested-to-date.
	investedCursor int
	invested       decimal.Decimal
}

// NewTradeReplay creates a replay over trades already sorted ascending by
// execution timestamp, as TradeRepository.ListByPortfolio returns them.
func NewTradeReplay(trades []*domain.Trade) *TradeReplay {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)
	for _, t := range trades {
		sym := domain.NormalizeSymbol(t.Symbol)
		if _, ok := seen[sym]; !ok {
			seen[sym] = struct{}{}
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return &TradeReplay{
		trades:   trades,
		holdings: make(map[string]float64, len(symbols)),
		symbols:  symbols,
	}
}

// HoldingsAt applies every not-yet-applied trade executed on or before the
// end of the given day, then returns the running holdings.
func (r *TradeReplay) HoldingsAt(day time.Time) map[string]float64 {
	day = domain.Day(day)
	for r.cursor < len(r.trades) {
		t := r.trades[r.cursor]
		if domain.Day(t.ExecutedAt).After(day) {
			break
		}
		sym := domain.NormalizeSymbol(t.Symbol)
		r.holdings[sym] += t.SignedQuantity()
		r.cursor++
	}
	return r.holdings
}

// InvestedAt returns net invested capital (buy cost plus fees, minus sell
// proceeds net of fees) up to the end of the given day. Days must be
// requested in non-decreasing order.
func (r *TradeReplay) InvestedAt(day time.Time) decimal.Decimal {
	day = domain.Day(day)
	for r.investedCursor < len(r.trades) {
		t := r.trades[r.investedCursor]
		if domain.Day(t.ExecutedAt).After(day) {
			break
		}
		r.invested = r.invested.Add(decimal.NewFromFloat(t.CostDelta()))
		r.investedCursor++
	}
	return r.invested
}

// Symbols returns the distinct traded symbols in lexical order.
func (r *TradeReplay) Symbols() []string {
	return r.symbols
}
