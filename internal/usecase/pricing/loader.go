package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// lookbackDays widens the fetch window before the range start so that
// last-observation-carried-forward can resolve the first days of a curve
// even when the start itself falls in a gap.
const lookbackDays = 30

// Loader fetches historical prices for a set of symbols and assembles a
// Resolver. Independent symbols are fetched concurrently; the resolver is
// only returned once every fetch has completed.
type Loader struct {
	prices      domain.PriceRepository
	stablecoins domain.StablecoinSet
}

// NewLoader creates a Loader over the given price repository.
func NewLoader(prices domain.PriceRepository, stablecoins domain.StablecoinSet) *Loader {
	return &Loader{prices: prices, stablecoins: stablecoins}
}

// Load fetches each symbol's daily closes from lookbackDays before start
// through end and returns a ready Resolver. Stablecoins are skipped; they
// resolve to 1.0 without history. The first fetch error fails the load.
func (l *Loader) Load(ctx context.Context, symbols []string, start, end time.Time) (*Resolver, error) {
	resolver := NewResolver(l.stablecoins)
	fetchStart := domain.Day(start).AddDate(0, 0, -lookbackDays)
	fetchEnd := domain.Day(end)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, symbol := range symbols {
		symbol = domain.NormalizeSymbol(symbol)
		if l.stablecoins.IsStablecoin(symbol) {
			continue
		}
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			points, err := l.prices.GetHistoricalPrices(ctx, symbol, fetchStart, fetchEnd)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch history for %s: %w", symbol, err)
				}
				return
			}
			resolver.AddHistory(symbol, points)
		}(symbol)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return resolver, nil
}
