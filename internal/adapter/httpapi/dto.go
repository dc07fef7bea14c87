package httpapi

import (
	"github.com/coinfolio/coinfolio-backend/internal/domain"
	"github.com/coinfolio/coinfolio-backend/internal/usecase/portfolio"
)

// Boundary dates are rendered as YYYY-MM-DD strings.

type curvePointDTO struct {
	Date       string                          `json:"date"`
	TotalValue float64                         `json:"total_value"`
	Breakdown  map[string]domain.PositionValue `json:"breakdown"`
}

type warningDTO struct {
	Date   string `json:"date"`
	Symbol string `json:"symbol"`
}

type curveMetadataDTO struct {
	FirstTradeDate string       `json:"first_trade_date"`
	TradeCount     int          `json:"trade_count"`
	Symbols        []string     `json:"symbols"`
	Warnings       []warningDTO `json:"warnings,omitempty"`
}

type equityCurveDTO struct {
	Points   []curvePointDTO  `json:"points"`
	Metadata curveMetadataDTO `json:"metadata"`
}

func toEquityCurveDTO(curve *portfolio.EquityCurve) equityCurveDTO {
	points := make([]curvePointDTO, 0, len(curve.Points))
	for _, p := range curve.Points {
		points = append(points, curvePointDTO{
			Date:       domain.FormatDay(p.Date),
			TotalValue: p.TotalValue,
			Breakdown:  p.Breakdown,
		})
	}
	warnings := make([]warningDTO, 0, len(curve.Metadata.Warnings))
	for _, wrn := range curve.Metadata.Warnings {
		warnings = append(warnings, warningDTO{Date: domain.FormatDay(wrn.Date), Symbol: wrn.Symbol})
	}
	return equityCurveDTO{
		Points: points,
		Metadata: curveMetadataDTO{
			FirstTradeDate: domain.FormatDay(curve.Metadata.FirstTradeDate),
			TradeCount:     curve.Metadata.TradeCount,
			Symbols:        curve.Metadata.Symbols,
			Warnings:       warnings,
		},
	}
}
