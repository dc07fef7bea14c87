package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfolio/coinfolio-backend/internal/cache"
	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/perf"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/pricing"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

// Service runs investment-strategy simulations: DCA vs HODL comparisons and
// daily-rebalanced preset allocations. Results are cached in the shared tier
// keyed by the full parameter tuple.
type Service struct {
	loader         *pricing.Loader
	cache          domain.CacheStore
	presets        map[string]domain.Preset
	commissionRate float64
	cacheTTL       time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a simulation service.
func NewService(
	loader *pricing.Loader,
	cacheStore domain.CacheStore,
	presets []domain.Preset,
	commissionRate float64,
	cacheTTL time.Duration,
	logger *slog.Logger,
	now func() time.Time,
) *Service {
	byName := make(map[string]domain.Preset, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		loader:         loader,
		cache:          cacheStore,
		presets:        byName,
		commissionRate: commissionRate,
		cacheTTL:       cacheTTL,
		logger:         logger,
		now:            now,
	}
}

// PairSpec splits each DCA purchase across a second asset. The two percents
// must sum to 100.
type PairSpec struct {
	Asset            string  `json:"asset"`
	PrimaryPercent   float64 `json:"primary_percent"`
	SecondaryPercent float64 `json:"secondary_percent"`
}

// DCARequest parameterizes a DCA-vs-HODL simulation.
type DCARequest struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Amount       float64   `json:"amount"`
	IntervalDays int       `json:"interval_days"`
	Asset        string    `json:"asset"`
	Pair         *PairSpec `json:"pair,omitempty"`
}

// DailyPoint is one row of a simulation's daily series.
type DailyPoint struct {
	Date      string             `json:"date"`
	Value     float64            `json:"value"`
	Invested  float64            `json:"invested"`
	HODLValue float64            `json:"hodl_value,omitempty"`
	Holdings  map[string]float64 `json:"holdings"`
}

// DCAResult compares a DCA schedule against its buy-and-hold counterpart.
type DCAResult struct {
	DCA       perf.Summary `json:"dca"`
	HODL      perf.Summary `json:"hodl"`
	DailyData []DailyPoint `json:"daily_data"`
}

// PresetResult is the outcome of one rebalanced-preset run.
type PresetResult struct {
	Preset     string               `json:"preset"`
	Metrics    perf.Summary         `json:"metrics"`
	Allocation []domain.PresetAsset `json:"allocation"`
	DailyData  []DailyPoint         `json:"daily_data"`
}

// RunDCASimulation values a DCA schedule and an economically equivalent HODL
// lump over the identical horizon and compares their metrics.
func (s *Service) RunDCASimulation(ctx context.Context, req DCARequest) (*DCAResult, error) {
	plan, err := s.buildPlan(req)
	if err != nil {
		return nil, err
	}

	key := cache.DCAKey(plan.symbols(), plan.Start, plan.End, req.Amount, req.IntervalDays, pairSplit(req.Pair))
	if cached, ok := cachedResult[DCAResult](s, ctx, key); ok {
		return cached, nil
	}

	resolver, err := s.loader.Load(ctx, plan.symbols(), plan.Start, plan.End)
	if err != nil {
		return nil, err
	}

	dcaSrc, err := NewDCA(plan, resolver)
	if err != nil {
		return nil, err
	}
	hodlSrc, err := NewHODL(plan, resolver)
	if err != nil {
		return nil, err
	}

	dcaPoints, _, err := valuation.Valuate(dcaSrc, resolver, plan.Start, plan.End)
	if err != nil {
		return nil, err
	}
	hodlPoints, _, err := valuation.Valuate(hodlSrc, resolver, plan.Start, plan.End)
	if err != nil {
		return nil, err
	}

	result := &DCAResult{
		DCA:       summarize(dcaPoints, dcaSrc.InvestedAt(plan.End)),
		HODL:      summarize(hodlPoints, hodlSrc.InvestedAt(plan.End)),
		DailyData: buildDailyData(dcaPoints, hodlPoints, dcaSrc),
	}
	s.storeResult(ctx, key, result)
	return result, nil
}

// GetPreset runs the named fixed-weight preset over the range.
func (s *Service) GetPreset(ctx context.Context, name string, start, end time.Time) (*PresetResult, error) {
	preset, ok := s.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, name)
	}
	if err := s.validateRange(start, end); err != nil {
		return nil, err
	}

	key := cache.PresetKey(name, start, end)
	if cached, ok := cachedResult[PresetResult](s, ctx, key); ok {
		return cached, nil
	}

	symbols := make([]string, 0, len(preset.Assets))
	for _, a := range preset.Assets {
		symbols = append(symbols, domain.NormalizeSymbol(a.Symbol))
	}
	resolver, err := s.loader.Load(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}

	src, err := NewRebalanced(preset, start, end, resolver)
	if err != nil {
		return nil, err
	}
	points, _, err := valuation.Valuate(src, resolver, start, end)
	if err != nil {
		return nil, err
	}

	result := &PresetResult{
		Preset:     preset.Name,
		Metrics:    summarize(points, src.InvestedAt(end)),
		Allocation: preset.Assets,
		DailyData:  buildDailyData(points, nil, src),
	}
	s.storeResult(ctx, key, result)
	return result, nil
}

// ListPresets returns the configured presets sorted by name.
func (s *Service) ListPresets() []domain.Preset {
	out := make([]domain.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) buildPlan(req DCARequest) (Plan, error) {
	if err := s.validateRange(req.Start, req.End); err != nil {
		return Plan{}, err
	}
	allocations := []Allocation{{Symbol: req.Asset, Percent: 100}}
	if req.Pair != nil {
		sum := req.Pair.PrimaryPercent + req.Pair.SecondaryPercent
		if sum < 99.999 || sum > 100.001 {
			return Plan{}, domain.NewValidationError("pair", "split percents must sum to 100")
		}
		allocations = []Allocation{
			{Symbol: req.Asset, Percent: req.Pair.PrimaryPercent},
			{Symbol: req.Pair.Asset, Percent: req.Pair.SecondaryPercent},
		}
	}
	return Plan{
		Start:          domain.Day(req.Start),
		End:            domain.Day(req.End),
		Amount:         decimal.NewFromFloat(req.Amount),
		IntervalDays:   req.IntervalDays,
		CommissionRate: s.commissionRate,
		Allocations:    allocations,
	}, nil
}

func (s *Service) validateRange(start, end time.Time) error {
	start, end = domain.Day(start), domain.Day(end)
	if start.After(end) {
		return domain.ErrInvalidRange
	}
	if start.After(domain.Day(s.now())) {
		return domain.ErrInvalidRange
	}
	return nil
}

func pairSplit(pair *PairSpec) string {
	if pair == nil {
		return "100"
	}
	return fmt.Sprintf("%.0f/%.0f", pair.PrimaryPercent, pair.SecondaryPercent)
}

// cachedResult is a typed read-through on the shared cache tier.
func cachedResult[T any](s *Service, ctx context.Context, key string) (*T, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("simulation cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("simulation cache payload corrupt", "key", key, "err", err)
		return nil, false
	}
	return &result, true
}

func (s *Service) storeResult(ctx context.Context, key string, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("simulation result not serializable", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("simulation cache write failed", "key", key, "err", err)
	}
}

func summarize(points []domain.EquityCurvePoint, invested decimal.Decimal) perf.Summary {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.TotalValue
	}
	return perf.Summarize(values, invested)
}

// buildDailyData walks the already-valued points and attaches invested-to-date
// and holdings from the source. hodlPoints may be nil.
func buildDailyData(points, hodlPoints []domain.EquityCurvePoint, src valuation.HoldingsSource) []DailyPoint {
	rows := make([]DailyPoint, 0, len(points))
	for i, p := range points {
		holdings := make(map[string]float64, len(p.Breakdown))
		for sym, pos := range p.Breakdown {
			holdings[sym] = pos.Holdings
		}
		row := DailyPoint{
			Date:     domain.FormatDay(p.Date),
			Value:    p.TotalValue,
			Invested: valuation.RoundMoney(src.InvestedAt(p.Date).InexactFloat64()),
			Holdings: holdings,
		}
		if hodlPoints != nil {
			row.HODLValue = hodlPoints[i].TotalValue
		}
		rows = append(rows, row)
	}
	return rows
}
