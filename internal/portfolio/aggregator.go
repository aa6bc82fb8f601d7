package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

// PriceSource supplies the current USD spot price of a symbol. An
// error means the price is unavailable; the aggregator degrades to
// zero figures instead of failing.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Rate is a USD->VND conversion rate and where it came from.
type Rate struct {
	Value  decimal.Decimal
	Source string
}

// RateSource supplies the current USD->VND rate.
type RateSource interface {
	GetUsdVndRate(ctx context.Context) (Rate, error)
}

// Aggregator is the read side of the ledger: it derives positions and
// P/L by scanning transaction rows. It never writes, and two calls
// without intervening writes return identical figures.
//
// Invested capital is summed from total_cash_amount, which is zero on
// USDT-funded buy legs by construction. That is the whole point of the
// funding-leg mechanism: cash spent is counted once, on the USDT sell
// leg, never twice.
type Aggregator struct {
	assets models.AssetStore
	txs    models.TransactionStore
	prices PriceSource
	rates  RateSource
}

func NewAggregator(assets models.AssetStore, txs models.TransactionStore, prices PriceSource, rates RateSource) *Aggregator {
	return &Aggregator{assets: assets, txs: txs, prices: prices, rates: rates}
}

// Summarize derives the position for one asset.
func (a *Aggregator) Summarize(ctx context.Context, assetID uuid.UUID) (*models.AssetSummary, error) {
	asset, err := a.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	txs, err := a.txs.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	rate := a.lookupRate(ctx)
	price, priceOK := a.lookupPrice(ctx, asset.Symbol)
	s := summarizeAsset(asset, txs, price, priceOK, rate.Value)
	return &s, nil
}

// SummarizeAll derives per-asset positions for every registered asset
// plus portfolio-wide totals.
func (a *Aggregator) SummarizeAll(ctx context.Context) (*models.PortfolioSummary, error) {
	assets, err := a.assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	rate := a.lookupRate(ctx)
	out := &models.PortfolioSummary{
		Assets:      make([]models.AssetSummary, 0, len(assets)),
		UsdVndRate:  rate.Value,
		RateSource:  rate.Source,
		GeneratedAt: time.Now().UTC(),
	}

	for i := range assets {
		asset := assets[i]
		txs, err := a.txs.ListByAsset(ctx, asset.ID)
		if err != nil {
			return nil, fmt.Errorf("list transactions for %s: %w", asset.Symbol, err)
		}
		price, priceOK := a.lookupPrice(ctx, asset.Symbol)
		s := summarizeAsset(&asset, txs, price, priceOK, rate.Value)
		out.Assets = append(out.Assets, s)

		out.TotalInvestedUsd = out.TotalInvestedUsd.Add(s.TotalInvestedUsd)
		out.TotalSoldUsd = out.TotalSoldUsd.Add(s.TotalSoldUsd)
		out.TotalValueUsd = out.TotalValueUsd.Add(s.CurrentValueUsd)
		out.RealizedPLUsd = out.RealizedPLUsd.Add(s.RealizedPLUsd)
		out.UnrealizedPLUsd = out.UnrealizedPLUsd.Add(s.UnrealizedPLUsd)
	}

	out.TotalInvestedVnd = out.TotalInvestedUsd.Mul(rate.Value)
	out.TotalSoldVnd = out.TotalSoldUsd.Mul(rate.Value)
	out.TotalValueVnd = out.TotalValueUsd.Mul(rate.Value)
	out.RealizedPLVnd = out.RealizedPLUsd.Mul(rate.Value)
	out.UnrealizedPLVnd = out.UnrealizedPLUsd.Mul(rate.Value)
	return out, nil
}

func (a *Aggregator) lookupPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	if a.prices == nil {
		return decimal.Zero, false
	}
	price, err := a.prices.GetPrice(ctx, symbol)
	if err != nil {
		fmt.Printf("[PORTFOLIO] No price for %s: %v\n", symbol, err)
		return decimal.Zero, false
	}
	return price, true
}

func (a *Aggregator) lookupRate(ctx context.Context) Rate {
	if a.rates == nil {
		return Rate{Value: decimal.Zero, Source: "unavailable"}
	}
	rate, err := a.rates.GetUsdVndRate(ctx)
	if err != nil {
		fmt.Printf("[PORTFOLIO] USD/VND rate unavailable: %v\n", err)
		return Rate{Value: decimal.Zero, Source: "unavailable"}
	}
	return rate
}

// summarizeAsset computes the derived figures from raw rows. Realized
// P/L values sold quantity at the running average cost over all buys
// to date, not at per-lot historical cost, so it shifts retroactively
// when buys are added after a sale. That matches the figures users
// already have.
func summarizeAsset(asset *models.Asset, txs []models.Transaction, price decimal.Decimal, priceOK bool, rate decimal.Decimal) models.AssetSummary {
	s := models.AssetSummary{
		AssetID:        asset.ID,
		Symbol:         asset.Symbol,
		DisplayName:    asset.DisplayName,
		PriceAvailable: priceOK,
	}

	var buyCashUsd decimal.Decimal
	for i := range txs {
		tx := &txs[i]
		switch tx.Kind {
		case models.KindBuy:
			s.TotalBoughtQty = s.TotalBoughtQty.Add(tx.Quantity)
			s.TotalInvestedUsd = s.TotalInvestedUsd.Add(tx.TotalCashAmount).Add(tx.Fee)
			buyCashUsd = buyCashUsd.Add(tx.TotalCashAmount)
		case models.KindSell:
			s.TotalSoldQty = s.TotalSoldQty.Add(tx.Quantity)
			s.TotalSoldUsd = s.TotalSoldUsd.Add(tx.TotalCashAmount).Sub(tx.Fee)
		}
	}

	s.CurrentHoldings = s.TotalBoughtQty.Sub(s.TotalSoldQty)

	// Guard the division: no buys means average of zero, never NaN.
	if s.TotalBoughtQty.IsPositive() {
		s.AvgBuyPriceUsd = buyCashUsd.Div(s.TotalBoughtQty)
	}

	s.RealizedPLUsd = s.TotalSoldUsd.Sub(s.TotalSoldQty.Mul(s.AvgBuyPriceUsd))

	if priceOK {
		s.CurrentPriceUsd = price
	}
	if priceOK && !s.CurrentHoldings.IsZero() {
		s.CurrentValueUsd = s.CurrentHoldings.Mul(price)
		s.UnrealizedPLUsd = s.CurrentValueUsd.Sub(s.CurrentHoldings.Mul(s.AvgBuyPriceUsd))
	}

	s.TotalInvestedVnd = s.TotalInvestedUsd.Mul(rate)
	s.TotalSoldVnd = s.TotalSoldUsd.Mul(rate)
	s.CurrentValueVnd = s.CurrentValueUsd.Mul(rate)
	s.RealizedPLVnd = s.RealizedPLUsd.Mul(rate)
	s.UnrealizedPLVnd = s.UnrealizedPLUsd.Mul(rate)
	return s
}
