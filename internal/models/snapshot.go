package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is a point-in-time record of the portfolio totals,
// written by the snapshot scheduler for history charts.
type PortfolioSnapshot struct {
	ID               uuid.UUID       `json:"id"`
	TotalValueUsd    decimal.Decimal `json:"totalValueUsd"`
	TotalValueVnd    decimal.Decimal `json:"totalValueVnd"`
	TotalInvestedUsd decimal.Decimal `json:"totalInvestedUsd"`
	UnrealizedPLUsd  decimal.Decimal `json:"unrealizedPlUsd"`
	RealizedPLUsd    decimal.Decimal `json:"realizedPlUsd"`
	UsdVndRate       decimal.Decimal `json:"usdVndRate"`
	CreatedAt        time.Time       `json:"createdAt"`
}
