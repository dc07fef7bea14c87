package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

func day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func btcHistory() []*domain.PricePoint {
	return []*domain.PricePoint{
		{Symbol: "BTC", Date: day("2024-01-01"), Close: 40000},
		{Symbol: "BTC", Date: day("2024-01-05"), Close: 42000},
		{Symbol: "BTC", Date: day("2024-01-10"), Close: 45000},
	}
}

func TestPriceOn_ExactMatch(t *testing.T) {
	r := NewResolver(nil)
	r.AddHistory("BTC", btcHistory())

	price, ok := r.PriceOn("BTC", day("2024-01-05"))
	assert.True(t, ok)
	assert.Equal(t, 42000.0, price)
}

func TestPriceOn_CarriesLastObservationForward(t *testing.T) {
	r := NewResolver(nil)
	r.AddHistory("BTC", btcHistory())

	// 2024-01-07 has no observation; the 01-05 close applies.
	price, ok := r.PriceOn("BTC", day("2024-01-07"))
	assert.True(t, ok)
	assert.Equal(t, 42000.0, price)

	// Far past the last observation, the final close still carries.
	price, ok = r.PriceOn("BTC", day("2024-06-01"))
	assert.True(t, ok)
	assert.Equal(t, 45000.0, price)
}

func TestPriceOn_NeverReadsForward(t *testing.T) {
	r := NewResolver(nil)
	r.AddHistory("BTC", btcHistory())

	// Before the first observation nothing is resolvable, even though
	// later closes exist.
	_, ok := r.PriceOn("BTC", day("2023-12-31"))
	assert.False(t, ok)
}

func TestPriceOn_UnknownSymbol(t *testing.T) {
	r := NewResolver(nil)
	_, ok := r.PriceOn("DOGE", day("2024-01-01"))
	assert.False(t, ok)
}

func TestPriceOn_Stablecoin(t *testing.T) {
	r := NewResolver(domain.NewStablecoinSet("USDT"))

	price, ok := r.PriceOn("usdt", day("2019-03-03"))
	assert.True(t, ok)
	assert.Equal(t, 1.0, price)

	// Stablecoin history is ignored even if provided.
	r.AddHistory("USDT", []*domain.PricePoint{{Symbol: "USDT", Date: day("2024-01-01"), Close: 0.97}})
	price, _ = r.PriceOn("USDT", day("2024-01-01"))
	assert.Equal(t, 1.0, price)
}

func TestAddHistory_UnsortedAndDuplicateDays(t *testing.T) {
	r := NewResolver(nil)
	r.AddHistory("ETH", []*domain.PricePoint{
		{Symbol: "ETH", Date: day("2024-02-03"), Close: 2300},
		{Symbol: "ETH", Date: day("2024-02-01"), Close: 2200},
		{Symbol: "ETH", Date: day("2024-02-01"), Close: 2250}, // last wins
	})

	price, ok := r.PriceOn("ETH", day("2024-02-02"))
	assert.True(t, ok)
	assert.Equal(t, 2250.0, price)

	assert.True(t, r.HasHistoryBy("ETH", day("2024-02-01")))
	assert.False(t, r.HasHistoryBy("ETH", day("2024-01-31")))
}
