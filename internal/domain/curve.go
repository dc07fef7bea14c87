package domain

import "time"

// PositionValue is the per-symbol slice of an equity curve point.
// Value is always 0 when Holdings is 0, even if Price is populated.
type PositionValue struct {
	Holdings float64 `json:"holdings"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// EquityCurvePoint captures the portfolio's total value and its per-symbol
// breakdown on one calendar day. TotalValue always equals the sum of the
// breakdown values.
type EquityCurvePoint struct {
	Date       time.Time                `json:"date"`
	TotalValue float64                  `json:"total_value"`
	Breakdown  map[string]PositionValue `json:"breakdown"`
}

// PriceGapWarning records a day on which a symbol's price could not be
// resolved. Gaps degrade that day's value to 0 for the symbol; they are
// reported, never fatal.
type PriceGapWarning struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
}

// CurveMetadata accompanies an equity curve response.
type CurveMetadata struct {
	FirstTradeDate time.Time         `json:"first_trade_date"`
	TradeCount     int               `json:"trade_count"`
	Symbols        []string          `json:"symbols"`
	Warnings       []PriceGapWarning `json:"warnings,omitempty"`
}
