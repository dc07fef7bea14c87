package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// Cache keys are deterministic colon-joined tuples of every parameter that
// affects the result. Portfolio-scoped keys share the PortfolioPrefix so a
// trade write can sweep them all at once.

// Key joins parts with ":".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// PortfolioPrefix is the sweep prefix for all of a portfolio's cached results.
func PortfolioPrefix(portfolioID uuid.UUID) string {
	return "portfolio:" + portfolioID.String() + ":"
}

// EquityCurveKey identifies one equity-curve computation.
func EquityCurveKey(portfolioID uuid.UUID, start, end time.Time) string {
	return PortfolioPrefix(portfolioID) + Key("equity_curve", domain.FormatDay(start), domain.FormatDay(end))
}

// SummaryKey identifies a portfolio summary view.
func SummaryKey(portfolioID uuid.UUID) string {
	return PortfolioPrefix(portfolioID) + "summary"
}

// AllocationKey identifies a portfolio allocation view with its sort option.
func AllocationKey(portfolioID uuid.UUID, sortBy string) string {
	return PortfolioPrefix(portfolioID) + Key("allocation", sortBy)
}

// PositionsKey identifies a portfolio positions view.
func PositionsKey(portfolioID uuid.UUID) string {
	return PortfolioPrefix(portfolioID) + "positions"
}

// DCAKey identifies one DCA-vs-HODL simulation run.
func DCAKey(assets []string, start, end time.Time, amount float64, intervalDays int, split string) string {
	return Key("sim", "dca", strings.Join(assets, ","), domain.FormatDay(start), domain.FormatDay(end),
		fmt.Sprintf("%.2f", amount), fmt.Sprintf("%d", intervalDays), split)
}

// PresetKey identifies one rebalanced-preset run.
func PresetKey(name string, start, end time.Time) string {
	return Key("sim", "preset", name, domain.FormatDay(start), domain.FormatDay(end))
}
