package domain

import "time"

// PricePoint represents one daily closing price observation for a symbol.
// At most one observation exists per symbol per day; a missing day means
// "carry the prior close forward".
type PricePoint struct {
	Symbol string
	Date   time.Time // UTC calendar day
	Close  float64
}

// StablecoinSet is the configured set of symbols whose price is a constant
// 1.0 USD by policy. Stablecoin closes are never stored or fetched.
type StablecoinSet map[string]struct{}

// NewStablecoinSet builds a set from the given symbols, normalizing each.
func NewStablecoinSet(symbols ...string) StablecoinSet {
	s := make(StablecoinSet, len(symbols))
	for _, sym := range symbols {
		s[NormalizeSymbol(sym)] = struct{}{}
	}
	return s
}

// IsStablecoin reports whether the symbol is pegged to 1.0 USD.
func (s StablecoinSet) IsStablecoin(symbol string) bool {
	_, ok := s[NormalizeSymbol(symbol)]
	return ok
}
