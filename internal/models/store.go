package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// AssetStore is the asset registry. Ensure must be idempotent: repeated
// or concurrent calls with the same symbol converge on a single row,
// which requires a uniqueness constraint on symbol in the backing store.
type AssetStore interface {
	// Ensure returns the asset for symbol, creating it on first
	// reference. An existing row is returned unchanged; displayName is
	// never updated by later calls.
	Ensure(ctx context.Context, symbol, displayName string) (*Asset, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)
	List(ctx context.Context) ([]Asset, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, tx *Transaction) error

	// InsertPair persists the USDT funding leg and the purchase leg
	// all-or-nothing, with LinkedTransactionID set on both rows. A
	// partial write here would fabricate a USDT outflow with no
	// matching purchase, so atomicity is not optional.
	InsertPair(ctx context.Context, funding, purchase *Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]Transaction, error)
	List(ctx context.Context, limit, offset int) ([]Transaction, error)

	Update(ctx context.Context, tx *Transaction) error

	// UpdatePair writes both legs of a funded purchase in one unit of
	// work, used when an edit resizes the funding leg.
	UpdatePair(ctx context.Context, a, b *Transaction) error

	// Delete removes the row and, when it is half of a funded pair,
	// the linked row in the same unit of work.
	Delete(ctx context.Context, id uuid.UUID) error

	// Orphans returns funding legs whose linked partner is missing.
	Orphans(ctx context.Context) ([]Transaction, error)
}

type P2PStore interface {
	// Insert persists the P2P trade and its backing USDT ledger leg
	// atomically.
	Insert(ctx context.Context, trade *P2PTrade, leg *Transaction) error

	List(ctx context.Context, limit, offset int) ([]P2PTrade, error)
}

type SnapshotStore interface {
	Insert(ctx context.Context, snap *PortfolioSnapshot) error
	List(ctx context.Context, limit int) ([]PortfolioSnapshot, error)
	GetLatest(ctx context.Context) (*PortfolioSnapshot, error)
}
