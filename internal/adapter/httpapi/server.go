// Package httpapi is the JSON boundary over the valuation and simulation
// services. It owns request parsing and the mapping of domain error kinds to
// status codes; hard failures from the engine arrive here unchanged.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/portfolio"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/simulation"
)

// Server routes API requests to the usecase services.
type Server struct {
	portfolios  *portfolio.Service
	simulations *simulation.Service
	logger      *slog.Logger
	mux         *http.ServeMux
}

// NewServer creates the API server.
func NewServer(portfolios *portfolio.Service, simulations *simulation.Service, logger *slog.Logger) *Server {
	s := &Server{
		portfolios:  portfolios,
		simulations: simulations,
		logger:      logger,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/portfolios/{id}/equity-curve", s.handleEquityCurve)
	s.mux.HandleFunc("GET /api/v1/portfolios/{id}/equity-stats", s.handleEquityStats)
	s.mux.HandleFunc("GET /api/v1/portfolios/{id}/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/v1/portfolios/{id}/allocation", s.handleAllocation)
	s.mux.HandleFunc("GET /api/v1/portfolios/{id}/positions", s.handlePositions)
	s.mux.HandleFunc("POST /api/v1/portfolios/{id}/trades", s.handleImportTrades)

	s.mux.HandleFunc("GET /api/v1/simulations/dca", s.handleDCA)
	s.mux.HandleFunc("GET /api/v1/presets", s.handleListPresets)
	s.mux.HandleFunc("GET /api/v1/presets/{name}", s.handlePreset)
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("request handled", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON renders v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain error kinds to status codes. Unknown errors are
// internal and logged; their details are not leaked to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound), errors.Is(err, domain.ErrPresetNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRange), domain.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoPriceData):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
