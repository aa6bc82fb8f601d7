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
	ErrBadP2PSide   = errors.New(`p2p side must be "buy" or "sell"`)
	ErrBadP2PAmount = errors.New("p2p amounts must be positive")
)

// P2PIntent is a fiat<->USDT trade done against a counterparty: VND
// via bank transfer, USDT on-chain or on-exchange.
type P2PIntent struct {
	Side         string // "buy" or "sell" of USDT
	UsdtAmount   decimal.Decimal
	VndAmount    decimal.Decimal
	Counterparty string
	Note         string
	OccurredAt   time.Time
}

// RecordP2P records a P2P trade together with its backing USDT ledger
// leg. The leg is cash-funded: the VND side is real external money, so
// the USD-equivalent counts toward invested capital like any other
// cash buy.
func (r *Recorder) RecordP2P(ctx context.Context, in P2PIntent) (*models.P2PTrade, *models.Transaction, error) {
	if in.Side != models.KindBuy && in.Side != models.KindSell {
		return nil, nil, ErrBadP2PSide
	}
	if in.UsdtAmount.LessThanOrEqual(decimal.Zero) || in.VndAmount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrBadP2PAmount
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	usdt, err := r.assets.Ensure(ctx, models.SymbolUSDT, "Tether")
	if err != nil {
		return nil, nil, fmt.Errorf("ensure USDT asset: %w", err)
	}

	note := in.Note
	if note == "" {
		verb := "bought"
		if in.Side == models.KindSell {
			verb = "sold"
		}
		note = fmt.Sprintf("P2P: %s %s USDT for %s VND", verb, in.UsdtAmount.String(), in.VndAmount.String())
	}

	leg := &models.Transaction{
		ID:              uuid.New(),
		AssetID:         usdt.ID,
		Kind:            in.Side,
		Quantity:        in.UsdtAmount,
		PricePerUnit:    decimal.NewFromInt(1),
		TotalCashAmount: in.UsdtAmount,
		Fee:             decimal.Zero,
		NativeFee:       decimal.Zero,
		NativeFeeUnit:   "USD",
		FundingSource:   models.FundingCash,
		Exchange:        "P2P",
		Note:            note,
		OccurredAt:      occurredAt,
		CreatedAt:       time.Now().UTC(),
	}

	trade := &models.P2PTrade{
		ID:            uuid.New(),
		TransactionID: leg.ID,
		Side:          in.Side,
		UsdtAmount:    in.UsdtAmount,
		VndAmount:     in.VndAmount,
		Rate:          in.VndAmount.Div(in.UsdtAmount),
		Counterparty:  in.Counterparty,
		Note:          in.Note,
		OccurredAt:    occurredAt,
		CreatedAt:     leg.CreatedAt,
	}

	if err := r.p2p.Insert(ctx, trade, leg); err != nil {
		return nil, nil, fmt.Errorf("insert p2p trade: %w", err)
	}
	return trade, leg, nil
}
