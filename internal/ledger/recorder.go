package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

var (
	ErrEmptySymbol    = errors.New("symbol is required")
	ErrBadQuantity    = errors.New("quantity must be positive")
	ErrBadPrice       = errors.New("price per unit must be positive")
	ErrNegativeFee    = errors.New("fee cannot be negative")
	ErrBadKind        = errors.New(`kind must be "buy" or "sell"`)
	ErrUsdtSelfFunded = errors.New("a USDT purchase cannot be funded by USDT")
	ErrEditFundingLeg = errors.New("funding legs are edited through their buy leg")
)

// TradeIntent is one user-initiated trade as it arrives from the API.
type TradeIntent struct {
	Symbol       string
	DisplayName  string
	Kind         string // "buy" or "sell"
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal // USD
	Fee          decimal.Decimal
	FeeInAsset   bool // fee denominated in asset units rather than USD
	FundedByUsdt bool // buy paid with previously acquired USDT, not cash
	Exchange     string
	Note         string
	OccurredAt   time.Time
}

func (in *TradeIntent) validate() error {
	if models.NormalizeSymbol(in.Symbol) == "" {
		return ErrEmptySymbol
	}
	if in.Kind != models.KindBuy && in.Kind != models.KindSell {
		return ErrBadKind
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return ErrBadQuantity
	}
	if in.PricePerUnit.LessThanOrEqual(decimal.Zero) {
		return ErrBadPrice
	}
	if in.Fee.IsNegative() {
		return ErrNegativeFee
	}
	if in.FundedByUsdt && models.NormalizeSymbol(in.Symbol) == models.SymbolUSDT {
		return ErrUsdtSelfFunded
	}
	return nil
}

// feeUsd normalizes the intent fee to USD.
func (in *TradeIntent) feeUsd() decimal.Decimal {
	if in.FeeInAsset {
		return in.Fee.Mul(in.PricePerUnit)
	}
	return in.Fee
}

// Recorder is the only writer of ledger rows. It owns the invariant
// that total_cash_amount reflects real external cash flow: a buy paid
// with USDT writes two linked rows, a synthetic USDT sell carrying the
// cash and the asset buy carrying none.
type Recorder struct {
	assets models.AssetStore
	txs    models.TransactionStore
	p2p    models.P2PStore
}

func NewRecorder(assets models.AssetStore, txs models.TransactionStore, p2p models.P2PStore) *Recorder {
	return &Recorder{assets: assets, txs: txs, p2p: p2p}
}

// Record validates the intent and persists one row (cash-funded buys,
// all sells, all USDT trades) or two linked rows (USDT-funded buys).
// Nothing is written when validation fails.
func (r *Recorder) Record(ctx context.Context, in TradeIntent) ([]models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	symbol := models.NormalizeSymbol(in.Symbol)
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	asset, err := r.assets.Ensure(ctx, symbol, in.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("ensure asset %s: %w", symbol, err)
	}

	feeUsd := in.feeUsd()
	cash := in.Quantity.Mul(in.PricePerUnit)
	nativeUnit := "USD"
	if in.FeeInAsset {
		nativeUnit = symbol
	}

	// The funding special case applies only to non-USDT buys.
	if in.Kind == models.KindSell || !in.FundedByUsdt || symbol == models.SymbolUSDT {
		tx := &models.Transaction{
			ID:              uuid.New(),
			AssetID:         asset.ID,
			Kind:            in.Kind,
			Quantity:        in.Quantity,
			PricePerUnit:    in.PricePerUnit,
			TotalCashAmount: cash,
			Fee:             feeUsd,
			NativeFee:       in.Fee,
			NativeFeeUnit:   nativeUnit,
			FundingSource:   models.FundingCash,
			Exchange:        in.Exchange,
			Note:            in.Note,
			OccurredAt:      occurredAt,
			CreatedAt:       time.Now().UTC(),
		}
		if err := r.txs.Insert(ctx, tx); err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		return []models.Transaction{*tx}, nil
	}

	usdt, err := r.assets.Ensure(ctx, models.SymbolUSDT, "Tether")
	if err != nil {
		return nil, fmt.Errorf("ensure USDT asset: %w", err)
	}

	// The USD-equivalent cost of the purchase, paid out of the USDT
	// balance. USDT is treated as pegged 1:1.
	fundingAmount := cash.Add(feeUsd)

	buyID := uuid.New()
	sellID := uuid.New()
	now := time.Now().UTC()

	funding := &models.Transaction{
		ID:                  sellID,
		AssetID:             usdt.ID,
		Kind:                models.KindSell,
		Quantity:            fundingAmount,
		PricePerUnit:        decimal.NewFromInt(1),
		TotalCashAmount:     fundingAmount,
		Fee:                 decimal.Zero,
		NativeFee:           decimal.Zero,
		NativeFeeUnit:       "USD",
		FundingSource:       models.FundingCash,
		LinkedTransactionID: &buyID,
		Exchange:            in.Exchange,
		Note: fmt.Sprintf("Funding for buy of %s %s @ %s USD",
			in.Quantity.String(), symbol, in.PricePerUnit.String()),
		OccurredAt: occurredAt,
		CreatedAt:  now,
	}

	note := in.Note
	if note == "" {
		note = "Paid with USDT"
	} else {
		note += " (paid with USDT)"
	}
	purchase := &models.Transaction{
		ID:                  buyID,
		AssetID:             asset.ID,
		Kind:                models.KindBuy,
		Quantity:            in.Quantity,
		PricePerUnit:        in.PricePerUnit,
		TotalCashAmount:     decimal.Zero,
		Fee:                 decimal.Zero,
		NativeFee:           in.Fee,
		NativeFeeUnit:       nativeUnit,
		FundingSource:       models.FundingUSDT,
		LinkedTransactionID: &sellID,
		Exchange:            in.Exchange,
		Note:                note,
		OccurredAt:          occurredAt,
		CreatedAt:           now,
	}

	if err := r.txs.InsertPair(ctx, funding, purchase); err != nil {
		return nil, fmt.Errorf("insert funded pair: %w", err)
	}
	return []models.Transaction{*funding, *purchase}, nil
}

// Update edits quantity, price, fee, exchange, note and timestamp of a
// transaction. Kind, symbol and funding source are fixed at record
// time; total_cash_amount is re-derived under the stored funding
// source, and editing a USDT-funded buy resizes its linked funding leg
// in the same unit of work so the pair stays consistent.
func (r *Recorder) Update(ctx context.Context, id uuid.UUID, in TradeIntent) (*models.Transaction, error) {
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBadQuantity
	}
	if in.PricePerUnit.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBadPrice
	}
	if in.Fee.IsNegative() {
		return nil, ErrNegativeFee
	}

	tx, err := r.txs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.IsFundingLeg() {
		return nil, ErrEditFundingLeg
	}

	feeUsd := in.feeUsd()
	cash := in.Quantity.Mul(in.PricePerUnit)

	tx.Quantity = in.Quantity
	tx.PricePerUnit = in.PricePerUnit
	tx.Exchange = in.Exchange
	if in.Note != "" {
		tx.Note = in.Note
	}
	if !in.OccurredAt.IsZero() {
		tx.OccurredAt = in.OccurredAt
	}

	if tx.Kind == models.KindBuy && tx.FundingSource == models.FundingUSDT {
		tx.TotalCashAmount = decimal.Zero
		tx.Fee = decimal.Zero
		tx.NativeFee = in.Fee

		if tx.LinkedTransactionID == nil {
			// Funded buy with a missing partner: orphaned data, fix
			// the row itself and leave the orphan scan to report it.
			if err := r.txs.Update(ctx, tx); err != nil {
				return nil, err
			}
			return tx, nil
		}

		funding, err := r.txs.GetByID(ctx, *tx.LinkedTransactionID)
		if err != nil {
			return nil, fmt.Errorf("load funding leg: %w", err)
		}
		symbol := ""
		if asset, aerr := r.assets.GetByID(ctx, tx.AssetID); aerr == nil {
			symbol = asset.Symbol
		}
		fundingAmount := cash.Add(feeUsd)
		funding.Quantity = fundingAmount
		funding.TotalCashAmount = fundingAmount
		funding.OccurredAt = tx.OccurredAt
		funding.Note = fmt.Sprintf("Funding for buy of %s %s @ %s USD",
			tx.Quantity.String(), symbol, tx.PricePerUnit.String())

		if err := r.txs.UpdatePair(ctx, tx, funding); err != nil {
			return nil, fmt.Errorf("update funded pair: %w", err)
		}
		return tx, nil
	}

	tx.TotalCashAmount = cash
	tx.Fee = feeUsd
	tx.NativeFee = in.Fee
	if err := r.txs.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete removes a transaction. When the row is half of a funded pair
// the linked leg goes with it; the store guarantees both-or-nothing.
func (r *Recorder) Delete(ctx context.Context, id uuid.UUID) error {
	return r.txs.Delete(ctx, id)
}

// Orphans reports funding legs whose partner row is missing. These can
// only come from pre-linkage data; the write path cannot produce them.
func (r *Recorder) Orphans(ctx context.Context) ([]models.Transaction, error) {
	return r.txs.Orphans(ctx)
}
