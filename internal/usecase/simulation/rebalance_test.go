package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/pricing"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

func testPreset() domain.Preset {
	return domain.Preset{
		Name:           "btc-eth-70-30",
		InitialCapital: 10000,
		Assets: []domain.PresetAsset{
			{Symbol: "BTC", Weight: 70},
			{Symbol: "ETH", Weight: 30},
		},
	}
}

func TestRebalanced_InitialAllocation(t *testing.T) {
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{{Date: day("2024-01-01"), Close: 100}})
	r.AddHistory("ETH", []*domain.PricePoint{{Date: day("2024-01-01"), Close: 20}})

	src, err := NewRebalanced(testPreset(), day("2024-01-01"), day("2024-01-10"), r)
	require.NoError(t, err)

	h := src.HoldingsAt(day("2024-01-01"))
	assert.InDelta(t, 70.0, h["BTC"], 1e-9) // 7000 / 100
	assert.InDelta(t, 150.0, h["ETH"], 1e-9) // 3000 / 20
	assert.Equal(t, 10000.0, src.InvestedAt(day("2024-01-01")).InexactFloat64())
}

func TestRebalanced_RestoresTargetWeightsAfterMove(t *testing.T) {
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{
		{Date: day("2024-01-01"), Close: 100},
		{Date: day("2024-01-02"), Close: 200},
	})
	r.AddHistory("ETH", []*domain.PricePoint{{Date: day("2024-01-01"), Close: 20}})

	src, err := NewRebalanced(testPreset(), day("2024-01-01"), day("2024-01-10"), r)
	require.NoError(t, err)
	src.HoldingsAt(day("2024-01-01"))

	// BTC doubled overnight: 70*200 + 150*20 = 17000 to redistribute.
	h := src.HoldingsAt(day("2024-01-02"))
	assert.InDelta(t, 17000*0.7/200, h["BTC"], 1e-9)
	assert.InDelta(t, 17000*0.3/20, h["ETH"], 1e-9)

	btcValue := h["BTC"] * 200
	ethValue := h["ETH"] * 20
	totalValue := btcValue + ethValue
	assert.InDelta(t, 0.70, btcValue/totalValue, 1e-6)
	assert.InDelta(t, 0.30, ethValue/totalValue, 1e-6)
}

func TestRebalanced_SharesMatchWeightsEveryDay(t *testing.T) {
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{
		{Date: day("2024-01-01"), Close: 100},
		{Date: day("2024-01-03"), Close: 140},
		{Date: day("2024-01-05"), Close: 90},
	})
	r.AddHistory("ETH", []*domain.PricePoint{
		{Date: day("2024-01-01"), Close: 20},
		{Date: day("2024-01-04"), Close: 35},
	})

	src, err := NewRebalanced(testPreset(), day("2024-01-01"), day("2024-01-07"), r)
	require.NoError(t, err)

	points, warnings, err := valuation.Valuate(src, r, day("2024-01-01"), day("2024-01-07"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	for _, p := range points {
		require.Positive(t, p.TotalValue)
		btcShare := p.Breakdown["BTC"].Value / p.TotalValue
		assert.InDeltaf(t, 0.70, btcShare, 1e-6, "on %s", domain.FormatDay(p.Date))
	}
}

func TestRebalanced_UnpricedAssetConservesValue(t *testing.T) {
	// BTC flat at 100 the whole range; ETH has no observation until 01-03.
	// While ETH is unpriced the full capital rides in BTC, and with a flat
	// price the total must hold at exactly the initial capital every day.
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{{Date: day("2024-01-01"), Close: 100}})
	r.AddHistory("ETH", []*domain.PricePoint{{Date: day("2024-01-03"), Close: 20}})

	src, err := NewRebalanced(testPreset(), day("2024-01-01"), day("2024-01-05"), r)
	require.NoError(t, err)

	h := src.HoldingsAt(day("2024-01-01"))
	assert.InDelta(t, 100.0, h["BTC"], 1e-9) // all 10000 deploys into BTC
	assert.Zero(t, h["ETH"])

	h = src.HoldingsAt(day("2024-01-02"))
	assert.InDelta(t, 100.0, h["BTC"], 1e-9)

	// ETH enters on 01-03: 10000 redistributes to the 70/30 targets.
	h = src.HoldingsAt(day("2024-01-03"))
	assert.InDelta(t, 10000*0.7/100, h["BTC"], 1e-9)
	assert.InDelta(t, 10000*0.3/20, h["ETH"], 1e-9)

	points, _, err := valuation.Valuate(src, r, day("2024-01-01"), day("2024-01-05"))
	require.NoError(t, err)
	for _, p := range points {
		assert.InDeltaf(t, 10000.0, p.TotalValue, 0.01, "on %s", domain.FormatDay(p.Date))
	}
}

func TestRebalanced_DeploymentWaitsForFirstPrice(t *testing.T) {
	// No asset is priced until 01-03; the capital must deploy then, not
	// evaporate.
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{{Date: day("2024-01-03"), Close: 100}})

	preset := domain.Preset{
		Name:           "btc-only",
		InitialCapital: 10000,
		Assets:         []domain.PresetAsset{{Symbol: "BTC", Weight: 100}},
	}
	src, err := NewRebalanced(preset, day("2024-01-01"), day("2024-01-05"), r)
	require.NoError(t, err)

	points, _, err := valuation.Valuate(src, r, day("2024-01-01"), day("2024-01-05"))
	require.NoError(t, err)

	assert.Zero(t, points[0].TotalValue)
	assert.Zero(t, points[1].TotalValue)
	for _, p := range points[2:] {
		assert.InDeltaf(t, 10000.0, p.TotalValue, 0.01, "on %s", domain.FormatDay(p.Date))
	}
	assert.Equal(t, 10000.0, src.InvestedAt(day("2024-01-01")).InexactFloat64())
}

func TestNewRebalanced_NoHistoryIsHardFailure(t *testing.T) {
	r := pricing.NewResolver(nil)
	r.AddHistory("BTC", []*domain.PricePoint{{Date: day("2024-01-01"), Close: 100}})

	_, err := NewRebalanced(testPreset(), day("2024-01-01"), day("2024-01-10"), r)
	assert.ErrorIs(t, err, domain.ErrNoPriceData)
}
