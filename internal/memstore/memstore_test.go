package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

func TestAssetStore_EnsureIdempotent(t *testing.T) {
	s := New()
	assets := NewAssetStore(s)
	ctx := context.Background()

	first, err := assets.Ensure(ctx, "btc", "Bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", first.Symbol, "symbol is normalized")

	second, err := assets.Ensure(ctx, " BTC ", "Bitcoin again")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same normalized symbol, same row")

	list, err := assets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTransactionStore_ListPagination(t *testing.T) {
	s := New()
	txs := NewTransactionStore(s)
	ctx := context.Background()

	assetID := uuid.New()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, txs.Insert(ctx, &models.Transaction{
			ID:         uuid.New(),
			AssetID:    assetID,
			Kind:       models.KindBuy,
			Quantity:   decimal.NewFromInt(1),
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := txs.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].OccurredAt.After(page[1].OccurredAt), "newest first")

	rest, err := txs.List(ctx, 10, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	past, err := txs.List(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestTransactionStore_UpdateMissing(t *testing.T) {
	s := New()
	txs := NewTransactionStore(s)

	err := txs.Update(context.Background(), &models.Transaction{ID: uuid.New()})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSnapshotStore_GetLatestEmpty(t *testing.T) {
	s := New()
	snaps := NewSnapshotStore(s)

	_, err := snaps.GetLatest(context.Background())
	require.ErrorIs(t, err, models.ErrNotFound)
}
