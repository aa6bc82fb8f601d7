package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhng/coinfolio-backend/internal/memstore"
	"github.com/thanhng/coinfolio-backend/internal/models"
)

func newTestRecorder() (*Recorder, *memstore.Store) {
	s := memstore.New()
	r := NewRecorder(memstore.NewAssetStore(s), memstore.NewTransactionStore(s), memstore.NewP2PStore(s))
	return r, s
}

func allTransactions(t *testing.T, s *memstore.Store) []models.Transaction {
	t.Helper()
	txs, err := memstore.NewTransactionStore(s).List(context.Background(), 0, 0)
	require.NoError(t, err)
	return txs
}

func TestRecord_CashBuy(t *testing.T) {
	r, s := newTestRecorder()

	txs, err := r.Record(context.Background(), TradeIntent{
		Symbol:       "btc",
		DisplayName:  "Bitcoin",
		Kind:         models.KindBuy,
		Quantity:     decimal.RequireFromString("0.5"),
		PricePerUnit: decimal.NewFromInt(45000),
		Fee:          decimal.NewFromInt(10),
		Exchange:     "Binance",
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, models.KindBuy, tx.Kind)
	assert.True(t, tx.TotalCashAmount.Equal(decimal.NewFromInt(22500)), "cash should be qty*price")
	assert.True(t, tx.Fee.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, models.FundingCash, tx.FundingSource)
	assert.Nil(t, tx.LinkedTransactionID)

	// No companion row.
	assert.Len(t, allTransactions(t, s), 1)
}

func TestRecord_FeeInAssetNormalizedToUsd(t *testing.T) {
	r, _ := newTestRecorder()

	txs, err := r.Record(context.Background(), TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(2),
		PricePerUnit: decimal.NewFromInt(3000),
		Fee:          decimal.RequireFromString("0.001"),
		FeeInAsset:   true,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.True(t, txs[0].Fee.Equal(decimal.NewFromInt(3)), "0.001 ETH @ 3000 = 3 USD")
	assert.True(t, txs[0].NativeFee.Equal(decimal.RequireFromString("0.001")))
	assert.Equal(t, "ETH", txs[0].NativeFeeUnit)
}

func TestRecord_UsdtFundedBuyWritesTwoLinkedRows(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "ETH",
		DisplayName:  "Ethereum",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(2),
		PricePerUnit: decimal.NewFromInt(3000),
		Fee:          decimal.Zero,
		FundedByUsdt: true,
	})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	funding, purchase := txs[0], txs[1]

	// Funding leg: synthetic USDT sell carrying the full cash amount.
	assert.Equal(t, models.KindSell, funding.Kind)
	assert.True(t, funding.Quantity.Equal(decimal.NewFromInt(6000)))
	assert.True(t, funding.TotalCashAmount.Equal(decimal.NewFromInt(6000)))
	assert.True(t, funding.PricePerUnit.Equal(decimal.NewFromInt(1)))
	assert.True(t, funding.Fee.IsZero())

	// Purchase leg: no external cash flow.
	assert.Equal(t, models.KindBuy, purchase.Kind)
	assert.True(t, purchase.TotalCashAmount.IsZero())
	assert.True(t, purchase.Fee.IsZero())
	assert.Equal(t, models.FundingUSDT, purchase.FundingSource)

	// Linked both ways, same timestamp.
	require.NotNil(t, funding.LinkedTransactionID)
	require.NotNil(t, purchase.LinkedTransactionID)
	assert.Equal(t, purchase.ID, *funding.LinkedTransactionID)
	assert.Equal(t, funding.ID, *purchase.LinkedTransactionID)
	assert.True(t, funding.OccurredAt.Equal(purchase.OccurredAt))

	// Funding leg belongs to the USDT asset.
	usdt, err := memstore.NewAssetStore(s).GetBySymbol(ctx, models.SymbolUSDT)
	require.NoError(t, err)
	assert.Equal(t, usdt.ID, funding.AssetID)

	assert.Len(t, allTransactions(t, s), 2)
}

func TestRecord_FundedBuyFeeCountedInFundingAmount(t *testing.T) {
	r, _ := newTestRecorder()

	txs, err := r.Record(context.Background(), TradeIntent{
		Symbol:       "SOL",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(10),
		PricePerUnit: decimal.NewFromInt(150),
		Fee:          decimal.NewFromInt(5),
		FundedByUsdt: true,
	})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, txs[0].Quantity.Equal(decimal.NewFromInt(1505)), "funding amount covers cash plus fee")
	assert.True(t, txs[1].NativeFee.Equal(decimal.NewFromInt(5)), "original fee kept on the buy leg for display")
}

func TestRecord_RejectionPersistsNothing(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	cases := []struct {
		name   string
		intent TradeIntent
		want   error
	}{
		{"empty symbol", TradeIntent{Kind: models.KindBuy, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(1)}, ErrEmptySymbol},
		{"zero quantity", TradeIntent{Symbol: "BTC", Kind: models.KindBuy, Quantity: decimal.Zero, PricePerUnit: decimal.NewFromInt(1)}, ErrBadQuantity},
		{"negative quantity", TradeIntent{Symbol: "BTC", Kind: models.KindBuy, Quantity: decimal.NewFromInt(-1), PricePerUnit: decimal.NewFromInt(1)}, ErrBadQuantity},
		{"zero price", TradeIntent{Symbol: "BTC", Kind: models.KindBuy, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.Zero}, ErrBadPrice},
		{"negative fee", TradeIntent{Symbol: "BTC", Kind: models.KindBuy, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(1), Fee: decimal.NewFromInt(-1)}, ErrNegativeFee},
		{"bad kind", TradeIntent{Symbol: "BTC", Kind: "hold", Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(1)}, ErrBadKind},
		{"usdt self-funded", TradeIntent{Symbol: "usdt", Kind: models.KindBuy, Quantity: decimal.NewFromInt(100), PricePerUnit: decimal.NewFromInt(1), FundedByUsdt: true}, ErrUsdtSelfFunded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Record(ctx, tc.intent)
			require.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, allTransactions(t, s), "failed records must not write rows")
}

func TestRecord_UsdtBuyIsSingleRowEvenWhenFlagged(t *testing.T) {
	r, s := newTestRecorder()

	// Funding flag only applies to non-USDT buys; a sell never splits.
	txs, err := r.Record(context.Background(), TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindSell,
		Quantity:     decimal.NewFromInt(1),
		PricePerUnit: decimal.NewFromInt(3200),
		FundedByUsdt: true,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.FundingCash, txs[0].FundingSource)
	assert.Len(t, allTransactions(t, s), 1)
}

func TestUpdate_CashBuyRederivesCash(t *testing.T) {
	r, _ := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "BTC",
		Kind:         models.KindBuy,
		Quantity:     decimal.RequireFromString("0.5"),
		PricePerUnit: decimal.NewFromInt(45000),
		Fee:          decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	updated, err := r.Update(ctx, txs[0].ID, TradeIntent{
		Quantity:     decimal.RequireFromString("0.6"),
		PricePerUnit: decimal.NewFromInt(40000),
		Fee:          decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	assert.True(t, updated.TotalCashAmount.Equal(decimal.NewFromInt(24000)))
	assert.True(t, updated.Fee.Equal(decimal.NewFromInt(12)))
}

func TestUpdate_FundedBuyResizesFundingLeg(t *testing.T) {
	r, _ := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(2),
		PricePerUnit: decimal.NewFromInt(3000),
		FundedByUsdt: true,
	})
	require.NoError(t, err)
	funding, purchase := txs[0], txs[1]

	updated, err := r.Update(ctx, purchase.ID, TradeIntent{
		Quantity:     decimal.NewFromInt(3),
		PricePerUnit: decimal.NewFromInt(2800),
		Fee:          decimal.NewFromInt(4),
	})
	require.NoError(t, err)

	// Buy leg still carries no cash.
	assert.True(t, updated.TotalCashAmount.IsZero())
	assert.True(t, updated.Fee.IsZero())
	assert.Equal(t, models.FundingUSDT, updated.FundingSource)

	// Funding leg resized to the new cost: 3*2800 + 4.
	leg, err := r.txs.GetByID(ctx, funding.ID)
	require.NoError(t, err)
	assert.True(t, leg.Quantity.Equal(decimal.NewFromInt(8404)))
	assert.True(t, leg.TotalCashAmount.Equal(decimal.NewFromInt(8404)))
}

func TestUpdate_FundingLegDirectEditRejected(t *testing.T) {
	r, _ := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(1),
		PricePerUnit: decimal.NewFromInt(3000),
		FundedByUsdt: true,
	})
	require.NoError(t, err)

	_, err = r.Update(ctx, txs[0].ID, TradeIntent{
		Quantity:     decimal.NewFromInt(1),
		PricePerUnit: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrEditFundingLeg)
}

func TestDelete_CascadesToLinkedLeg(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(2),
		PricePerUnit: decimal.NewFromInt(3000),
		FundedByUsdt: true,
	})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, txs[1].ID))
	assert.Empty(t, allTransactions(t, s), "both legs gone")

	orphans, err := r.Orphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestOrphans_ReportsHalfPairs(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	txs, err := r.Record(ctx, TradeIntent{
		Symbol:       "ETH",
		Kind:         models.KindBuy,
		Quantity:     decimal.NewFromInt(2),
		PricePerUnit: decimal.NewFromInt(3000),
		FundedByUsdt: true,
	})
	require.NoError(t, err)

	// Simulate pre-linkage damage: drop the buy leg behind the store's
	// back so the funding leg dangles.
	store := memstore.NewTransactionStore(s)
	purchase := txs[1]
	purchase.LinkedTransactionID = nil
	require.NoError(t, store.Update(ctx, &purchase))
	require.NoError(t, store.Delete(ctx, purchase.ID))

	orphans, err := r.Orphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, txs[0].ID, orphans[0].ID)
}

func TestRecordP2P_BuyWritesTradeAndCashLeg(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	trade, leg, err := r.RecordP2P(ctx, P2PIntent{
		Side:         models.KindBuy,
		UsdtAmount:   decimal.NewFromInt(500),
		VndAmount:    decimal.NewFromInt(13150000),
		Counterparty: "localtrader88",
	})
	require.NoError(t, err)

	assert.True(t, trade.Rate.Equal(decimal.NewFromInt(26300)), "rate is VND per USDT")
	assert.Equal(t, leg.ID, trade.TransactionID)

	// The ledger leg is a genuine cash inflow of USDT.
	assert.Equal(t, models.KindBuy, leg.Kind)
	assert.True(t, leg.Quantity.Equal(decimal.NewFromInt(500)))
	assert.True(t, leg.TotalCashAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, models.FundingCash, leg.FundingSource)
	assert.Equal(t, "P2P", leg.Exchange)

	usdt, err := memstore.NewAssetStore(s).GetBySymbol(ctx, models.SymbolUSDT)
	require.NoError(t, err)
	assert.Equal(t, usdt.ID, leg.AssetID)
}

func TestRecordP2P_Rejections(t *testing.T) {
	r, s := newTestRecorder()
	ctx := context.Background()

	_, _, err := r.RecordP2P(ctx, P2PIntent{Side: "swap", UsdtAmount: decimal.NewFromInt(1), VndAmount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrBadP2PSide)

	_, _, err = r.RecordP2P(ctx, P2PIntent{Side: models.KindBuy, UsdtAmount: decimal.Zero, VndAmount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrBadP2PAmount)

	_, _, err = r.RecordP2P(ctx, P2PIntent{Side: models.KindSell, UsdtAmount: decimal.NewFromInt(1), VndAmount: decimal.NewFromInt(-5)})
	require.ErrorIs(t, err, ErrBadP2PAmount)

	assert.Empty(t, allTransactions(t, s))
}
