package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/coinfolio/coinfolio-backend/internal/cache"
	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/perf"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/pricing"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/valuation"
)

// Service reconstructs a real portfolio's value over time from its trade
// ledger and exposes the derived views (summary, allocation, positions).
//
// Two cache tiers back it: the in-process tier memoizes the expensive
// full-history equity curve, the shared tier holds the aggregate views. Any
// trade write sweeps both by portfolio prefix so stale valuations are never
// served after an import.
type Service struct {
	trades   domain.TradeRepository
	loader   *pricing.Loader
	memCache domain.CacheStore
	shared   domain.CacheStore
	cacheTTL time.Duration
	curveTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a portfolio valuation service.
func NewService(
	trades domain.TradeRepository,
	loader *pricing.Loader,
	memCache domain.CacheStore,
	shared domain.CacheStore,
	cacheTTL time.Duration,
	curveTTL time.Duration,
	logger *slog.Logger,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		trades:   trades,
		loader:   loader,
		memCache: memCache,
		shared:   shared,
		cacheTTL: cacheTTL,
		curveTTL: curveTTL,
		logger:   logger,
		now:      now,
	}
}

// RangeOptions optionally narrows an equity curve. Nil bounds default to the
// first trade date and today.
type RangeOptions struct {
	Start *time.Time
	End   *time.Time
}

// EquityCurve is an equity-curve response: the daily points plus metadata.
type EquityCurve struct {
	Points   []domain.EquityCurvePoint `json:"points"`
	Metadata domain.CurveMetadata      `json:"metadata"`
}

// CalculateEquityCurve replays the portfolio's trades over the requested
// range and values the resulting holdings day by day. The zero-argument
// full-history curve is memoized in the in-process tier.
func (s *Service) CalculateEquityCurve(ctx context.Context, portfolioID uuid.UUID, opts RangeOptions) (*EquityCurve, error) {
	trades, err := s.trades.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, portfolioID)
	}

	firstTradeDay := domain.Day(trades[0].ExecutedAt)
	today := domain.Day(s.now())

	start, end := firstTradeDay, today
	fullHistory := opts.Start == nil && opts.End == nil
	if opts.Start != nil {
		start = domain.Day(*opts.Start)
	}
	if opts.End != nil {
		end = domain.Day(*opts.End)
	}
	if start.After(end) || start.After(today) {
		return nil, domain.ErrInvalidRange
	}

	key := cache.EquityCurveKey(portfolioID, start, end)
	if fullHistory {
		if curve, ok := s.cachedCurve(ctx, key); ok {
			return curve, nil
		}
	}

	curve, err := s.computeCurve(ctx, trades, start, end)
	if err != nil {
		return nil, err
	}

	if fullHistory {
		s.storeCurve(ctx, key, curve)
	}
	return curve, nil
}

// CalculateEquityStats derives descriptive statistics from curve points.
func (s *Service) CalculateEquityStats(points []domain.EquityCurvePoint) perf.EquityStats {
	return perf.ComputeEquityStats(points)
}

// Summary is the headline view of a portfolio's current standing.
type Summary struct {
	TotalValue float64 `json:"total_value"`
	Invested   float64 `json:"invested"`
	PnL        float64 `json:"pnl"`
	PnLPercent float64 `json:"pnl_percent"`
	TradeCount int     `json:"trade_count"`
}

// GetSummary values the portfolio as of today and compares it against net
// invested capital. Cached in the shared tier.
func (s *Service) GetSummary(ctx context.Context, portfolioID uuid.UUID) (*Summary, error) {
	key := cache.SummaryKey(portfolioID)
	if payload, ok, _ := s.shared.Get(ctx, key); ok {
		var summary Summary
		if err := json.Unmarshal(payload, &summary); err == nil {
			return &summary, nil
		}
	}

	trades, replay, point, err := s.valueToday(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	invested := replay.InvestedAt(domain.Day(s.now())).InexactFloat64()
	pnl := point.TotalValue - invested
	pnlPct := 0.0
	if invested > 0 {
		pnlPct = pnl / invested * 100
	}
	summary := &Summary{
		TotalValue: point.TotalValue,
		Invested:   valuation.RoundMoney(invested),
		PnL:        valuation.RoundMoney(pnl),
		PnLPercent: pnlPct,
		TradeCount: len(trades),
	}
	s.storeShared(ctx, key, summary)
	return summary, nil
}

// AllocationSlice is one symbol's share of the portfolio's current value.
type AllocationSlice struct {
	Symbol  string  `json:"symbol"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// GetAllocation returns each symbol's share of today's total value.
// sortBy is "value" (default, descending) or "symbol". Cached in the shared
// tier per sort option.
func (s *Service) GetAllocation(ctx context.Context, portfolioID uuid.UUID, sortBy string) ([]AllocationSlice, error) {
	switch sortBy {
	case "", "value":
		sortBy = "value"
	case "symbol":
	default:
		return nil, domain.NewValidationError("sort", "must be value or symbol")
	}

	key := cache.AllocationKey(portfolioID, sortBy)
	if payload, ok, _ := s.shared.Get(ctx, key); ok {
		var slices []AllocationSlice
		if err := json.Unmarshal(payload, &slices); err == nil {
			return slices, nil
		}
	}

	_, _, point, err := s.valueToday(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	slices := make([]AllocationSlice, 0, len(point.Breakdown))
	for sym, pos := range point.Breakdown {
		pct := 0.0
		if point.TotalValue > 0 {
			pct = pos.Value / point.TotalValue * 100
		}
		slices = append(slices, AllocationSlice{Symbol: sym, Value: pos.Value, Percent: pct})
	}
	if sortBy == "symbol" {
		sort.Slice(slices, func(i, j int) bool { return slices[i].Symbol < slices[j].Symbol })
	} else {
		sort.Slice(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })
	}

	s.storeShared(ctx, key, slices)
	return slices, nil
}

// Position is one symbol's current holdings, price and value.
type Position struct {
	Symbol   string  `json:"symbol"`
	Holdings float64 `json:"holdings"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// GetPositions returns today's per-symbol positions, including symbols whose
// holdings have gone to zero. Cached in the shared tier.
func (s *Service) GetPositions(ctx context.Context, portfolioID uuid.UUID) ([]Position, error) {
	key := cache.PositionsKey(portfolioID)
	if payload, ok, _ := s.shared.Get(ctx, key); ok {
		var positions []Position
		if err := json.Unmarshal(payload, &positions); err == nil {
			return positions, nil
		}
	}

	_, _, point, err := s.valueToday(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(point.Breakdown))
	for sym, pos := range point.Breakdown {
		positions = append(positions, Position{
			Symbol:   sym,
			Holdings: pos.Holdings,
			Price:    pos.Price,
			Value:    pos.Value,
		})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	s.storeShared(ctx, key, positions)
	return positions, nil
}

// ImportTrades validates and persists a batch of trades, then eagerly sweeps
// every cached result scoped to the portfolio. It returns the number of
// trades written. CSV parsing and exchange sync happen upstream; this is the
// single write path they share.
func (s *Service) ImportTrades(ctx context.Context, portfolioID uuid.UUID, trades []*domain.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, domain.NewValidationError("trades", "cannot be empty")
	}
	for _, t := range trades {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.PortfolioID = portfolioID
		t.Symbol = domain.NormalizeSymbol(t.Symbol)
		if err := t.Validate(); err != nil {
			return 0, err
		}
	}

	if err := s.trades.CreateBatch(ctx, trades); err != nil {
		return 0, fmt.Errorf("persist trades: %w", err)
	}

	prefix := cache.PortfolioPrefix(portfolioID)
	if err := s.shared.DeleteByPrefix(ctx, prefix); err != nil {
		s.logger.Warn("shared cache sweep failed", "portfolio", portfolioID, "err", err)
	}
	if err := s.memCache.DeleteByPrefix(ctx, prefix); err != nil {
		s.logger.Warn("memory cache sweep failed", "portfolio", portfolioID, "err", err)
	}

	total, err := s.trades.CountByPortfolio(ctx, portfolioID)
	if err != nil {
		s.logger.Warn("trade count unavailable", "portfolio", portfolioID, "err", err)
		total = -1
	}
	s.logger.Info("trades imported", "portfolio", portfolioID, "count", len(trades), "total", total)
	return len(trades), nil
}

// computeCurve loads price histories (concurrently per symbol), replays the
// trades and runs the valuation walk.
func (s *Service) computeCurve(ctx context.Context, trades []*domain.Trade, start, end time.Time) (*EquityCurve, error) {
	replay := valuation.NewTradeReplay(trades)

	resolver, err := s.loader.Load(ctx, replay.Symbols(), start, end)
	if err != nil {
		return nil, err
	}
	// A held symbol with zero observations anywhere in range is a hard
	// failure; per-day gaps are only warnings.
	for _, sym := range replay.Symbols() {
		if !resolver.HasHistoryBy(sym, end) {
			return nil, domain.NoPriceDataError(sym)
		}
	}

	points, warnings, err := valuation.Valuate(replay, resolver, start, end)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		s.logger.Warn("price gaps in equity curve",
			"portfolio", trades[0].PortfolioID, "gaps", len(warnings))
	}

	return &EquityCurve{
		Points: points,
		Metadata: domain.CurveMetadata{
			FirstTradeDate: domain.Day(trades[0].ExecutedAt),
			TradeCount:     len(trades),
			Symbols:        replay.Symbols(),
			Warnings:       warnings,
		},
	}, nil
}

// valueToday computes the single most recent curve point.
func (s *Service) valueToday(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Trade, *valuation.TradeReplay, *domain.EquityCurvePoint, error) {
	trades, err := s.trades.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list trades: %w", err)
	}
	if len(trades) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, portfolioID)
	}

	today := domain.Day(s.now())
	replay := valuation.NewTradeReplay(trades)
	resolver, err := s.loader.Load(ctx, replay.Symbols(), today, today)
	if err != nil {
		return nil, nil, nil, err
	}

	points, _, err := valuation.Valuate(replay, resolver, today, today)
	if err != nil {
		return nil, nil, nil, err
	}
	return trades, replay, &points[0], nil
}

func (s *Service) cachedCurve(ctx context.Context, key string) (*EquityCurve, bool) {
	payload, ok, err := s.memCache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var curve EquityCurve
	if err := json.Unmarshal(payload, &curve); err != nil {
		return nil, false
	}
	return &curve, true
}

func (s *Service) storeCurve(ctx context.Context, key string, curve *EquityCurve) {
	payload, err := json.Marshal(curve)
	if err != nil {
		return
	}
	if err := s.memCache.Set(ctx, key, payload, s.curveTTL); err != nil {
		s.logger.Warn("curve cache write failed", "key", key, "err", err)
	}
}

func (s *Service) storeShared(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.shared.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("shared cache write failed", "key", key, "err", err)
	}
}
