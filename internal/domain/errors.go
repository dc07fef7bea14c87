package domain

import (
	"errors"
	"fmt"
)

// Hard failure kinds. These propagate unchanged to the boundary layer, which
// owns status-code mapping; the engine never retries or swallows them.
var (
	// ErrPortfolioNotFound indicates an unknown portfolio (no trades exist).
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrPresetNotFound indicates an unknown simulation preset name.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrInvalidRange indicates a date range with start after end, or a
	// start date after today.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrNoPriceData indicates a required symbol has zero usable price
	// observations across the whole requested range. Per-day gaps are not
	// this error; they degrade to warnings.
	ErrNoPriceData = errors.New("no historical data for symbol")
)

// ValidationError reports a malformed input parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NoPriceDataError wraps ErrNoPriceData with the offending symbol.
func NoPriceDataError(symbol string) error {
	return fmt.Errorf("%w: %s", ErrNoPriceData, symbol)
}
