package pricing

import (
	"sort"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// Resolver answers "what was this symbol worth on this day" from sparse daily
// close observations, carrying the last observation forward across gaps.
// Stablecoins resolve to a constant 1.0 without any stored history.
//
// A Resolver is built once per request and is read-only afterwards.
type Resolver struct {
	stablecoins domain.StablecoinSet
	series      map[string]*series
}

// series keeps one symbol's observations sorted ascending by day, days and
// closes in lockstep.
type series struct {
	days   []time.Time
	closes []float64
}

// NewResolver creates a Resolver with the given stablecoin policy.
func NewResolver(stablecoins domain.StablecoinSet) *Resolver {
	return &Resolver{
		stablecoins: stablecoins,
		series:      make(map[string]*series),
	}
}

// AddHistory loads a symbol's observations. Points may arrive unsorted;
// duplicate days keep the last close seen. Stablecoin histories are ignored.
func (r *Resolver) AddHistory(symbol string, points []*domain.PricePoint) {
	symbol = domain.NormalizeSymbol(symbol)
	if r.stablecoins.IsStablecoin(symbol) {
		return
	}
	s, ok := r.series[symbol]
	if !ok {
		s = &series{}
		r.series[symbol] = s
	}
	for _, p := range points {
		day := domain.Day(p.Date)
		if i := s.indexOf(day); i >= 0 {
			s.closes[i] = p.Close
			continue
		}
		s.days = append(s.days, day)
		s.closes = append(s.closes, p.Close)
	}
	sort.Sort(s)
}

// PriceOn resolves the price effective on the given day: an exact observation
// if one exists, otherwise the closest earlier one. It never reads forward.
// Returns (0, false) when no observation exists on or before the day; the
// caller records a data-quality warning instead of failing.
func (r *Resolver) PriceOn(symbol string, day time.Time) (float64, bool) {
	symbol = domain.NormalizeSymbol(symbol)
	if r.stablecoins.IsStablecoin(symbol) {
		return 1.0, true
	}
	s, ok := r.series[symbol]
	if !ok || len(s.days) == 0 {
		return 0, false
	}
	day = domain.Day(day)
	// First index strictly after day; the effective observation is the one
	// just before it.
	i := sort.Search(len(s.days), func(i int) bool { return s.days[i].After(day) })
	if i == 0 {
		return 0, false
	}
	return s.closes[i-1], true
}

// HasHistoryBy reports whether the symbol has at least one observation on or
// before the given day, i.e. whether PriceOn can ever succeed up to that day.
// Stablecoins always have history.
func (r *Resolver) HasHistoryBy(symbol string, day time.Time) bool {
	_, ok := r.PriceOn(symbol, day)
	return ok
}

func (s *series) indexOf(day time.Time) int {
	for i, d := range s.days {
		if d.Equal(day) {
			return i
		}
	}
	return -1
}

func (s *series) Len() int           { return len(s.days) }
func (s *series) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s *series) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.closes[i], s.closes[j] = s.closes[j], s.closes[i]
}
