package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetSummary is the derived position for one asset. All figures are
// recomputed from the transaction rows on every call; there is no
// cached state behind them.
type AssetSummary struct {
	AssetID     uuid.UUID `json:"assetId"`
	Symbol      string    `json:"symbol"`
	DisplayName string    `json:"displayName"`

	TotalBoughtQty  decimal.Decimal `json:"totalBoughtQty"`
	TotalSoldQty    decimal.Decimal `json:"totalSoldQty"`
	CurrentHoldings decimal.Decimal `json:"currentHoldings"`

	TotalInvestedUsd decimal.Decimal `json:"totalInvestedUsd"`
	TotalSoldUsd     decimal.Decimal `json:"totalSoldUsd"`
	AvgBuyPriceUsd   decimal.Decimal `json:"avgBuyPriceUsd"`
	CurrentPriceUsd  decimal.Decimal `json:"currentPriceUsd"`
	CurrentValueUsd  decimal.Decimal `json:"currentValueUsd"`
	RealizedPLUsd    decimal.Decimal `json:"realizedPlUsd"`
	UnrealizedPLUsd  decimal.Decimal `json:"unrealizedPlUsd"`

	TotalInvestedVnd decimal.Decimal `json:"totalInvestedVnd"`
	TotalSoldVnd     decimal.Decimal `json:"totalSoldVnd"`
	CurrentValueVnd  decimal.Decimal `json:"currentValueVnd"`
	RealizedPLVnd    decimal.Decimal `json:"realizedPlVnd"`
	UnrealizedPLVnd  decimal.Decimal `json:"unrealizedPlVnd"`

	PriceAvailable bool `json:"priceAvailable"`
}

// PortfolioSummary aggregates every asset plus portfolio-wide totals.
type PortfolioSummary struct {
	Assets []AssetSummary `json:"assets"`

	TotalInvestedUsd decimal.Decimal `json:"totalInvestedUsd"`
	TotalSoldUsd     decimal.Decimal `json:"totalSoldUsd"`
	TotalValueUsd    decimal.Decimal `json:"totalValueUsd"`
	RealizedPLUsd    decimal.Decimal `json:"realizedPlUsd"`
	UnrealizedPLUsd  decimal.Decimal `json:"unrealizedPlUsd"`

	TotalInvestedVnd decimal.Decimal `json:"totalInvestedVnd"`
	TotalSoldVnd     decimal.Decimal `json:"totalSoldVnd"`
	TotalValueVnd    decimal.Decimal `json:"totalValueVnd"`
	RealizedPLVnd    decimal.Decimal `json:"realizedPlVnd"`
	UnrealizedPLVnd  decimal.Decimal `json:"unrealizedPlVnd"`

	UsdVndRate  decimal.Decimal `json:"usdVndRate"`
	RateSource  string          `json:"rateSource"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
