package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/portfolio"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/simulation"
)

func (s *Server) handleEquityCurve(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	curve, err := s.portfolios.CalculateEquityCurve(r.Context(), portfolioID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquityCurveDTO(curve))
}

func (s *Server) handleEquityStats(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	curve, err := s.portfolios.CalculateEquityCurve(r.Context(), portfolioID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.portfolios.CalculateEquityStats(curve.Points))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.portfolios.GetSummary(r.Context(), portfolioID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	allocation, err := s.portfolios.GetAllocation(r.Context(), portfolioID, r.URL.Query().Get("sort"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, allocation)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	positions, err := s.portfolios.GetPositions(r.Context(), portfolioID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// tradeDTO is one row of a trade import request. Rows arrive already parsed
// and validated upstream of the engine; the service re-validates domain rules.
type tradeDTO struct {
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Fee        float64   `json:"fee"`
	ExecutedAt time.Time `json:"executed_at"`
	Exchange   string    `json:"exchange"`
	SourceID   string    `json:"source_id,omitempty"`
}

func (s *Server) handleImportTrades(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := parsePortfolioID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	defer r.Body.Close()
	var rows []tradeDTO
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.writeError(w, r, domain.NewValidationError("body", "malformed JSON: "+err.Error()))
		return
	}

	trades := make([]*domain.Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, &domain.Trade{
			Symbol:     row.Symbol,
			Side:       domain.TradeSide(row.Side),
			Quantity:   row.Quantity,
			Price:      row.Price,
			Fee:        row.Fee,
			ExecutedAt: row.ExecutedAt,
			Exchange:   row.Exchange,
			SourceID:   row.SourceID,
		})
	}

	count, err := s.portfolios.ImportTrades(r.Context(), portfolioID, trades)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": count})
}

func (s *Server) handleDCA(w http.ResponseWriter, r *http.Request) {
	req, err := parseDCARequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.simulations.RunDCASimulation(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.simulations.ListPresets())
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	start, err := requireDay(r, "start")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := requireDay(r, "end")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.simulations.GetPreset(r.Context(), r.PathValue("name"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parsePortfolioID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

// parseRange reads optional start/end query parameters as YYYY-MM-DD days.
func parseRange(r *http.Request) (portfolio.RangeOptions, error) {
	var opts portfolio.RangeOptions
	if raw := r.URL.Query().Get("start"); raw != "" {
		day, err := domain.ParseDay(raw)
		if err != nil {
			return opts, domain.NewValidationError("start", err.Error())
		}
		opts.Start = &day
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		day, err := domain.ParseDay(raw)
		if err != nil {
			return opts, domain.NewValidationError("end", err.Error())
		}
		opts.End = &day
	}
	return opts, nil
}

func requireDay(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(name, "is required")
	}
	day, err := domain.ParseDay(raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, err.Error())
	}
	return day, nil
}

func parseDCARequest(r *http.Request) (simulation.DCARequest, error) {
	var req simulation.DCARequest
	q := r.URL.Query()

	var err error
	if req.Start, err = requireDay(r, "start"); err != nil {
		return req, err
	}
	if req.End, err = requireDay(r, "end"); err != nil {
		return req, err
	}

	req.Asset = q.Get("asset")
	if req.Asset == "" {
		return req, domain.NewValidationError("asset", "is required")
	}
	if req.Amount, err = strconv.ParseFloat(q.Get("amount"), 64); err != nil {
		return req, domain.NewValidationError("amount", "must be a number")
	}
	if req.IntervalDays, err = strconv.Atoi(q.Get("interval")); err != nil {
		return req, domain.NewValidationError("interval", "must be an integer")
	}

	if pairAsset := q.Get("pair_asset"); pairAsset != "" {
		primary, err := strconv.ParseFloat(q.Get("pair_primary"), 64)
		if err != nil {
			return req, domain.NewValidationError("pair_primary", "must be a number")
		}
		secondary, err := strconv.ParseFloat(q.Get("pair_secondary"), 64)
		if err != nil {
			return req, domain.NewValidationError("pair_secondary", "must be a number")
		}
		req.Pair = &simulation.PairSpec{
			Asset:            pairAsset,
			PrimaryPercent:   primary,
			SecondaryPercent: secondary,
		}
	}
	return req, nil
}
