// Package memstore provides in-memory implementations of the model
// stores. They back the unit tests and let the server run without
// Postgres for local experimentation.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

// Store holds all tables behind one mutex so multi-row operations are
// naturally atomic.
type Store struct {
	mu        sync.RWMutex
	assets    map[uuid.UUID]models.Asset
	bySymbol  map[string]uuid.UUID
	txs       map[uuid.UUID]models.Transaction
	p2p       map[uuid.UUID]models.P2PTrade
	snapshots []models.PortfolioSnapshot
}

func New() *Store {
	return &Store{
		assets:   make(map[uuid.UUID]models.Asset),
		bySymbol: make(map[string]uuid.UUID),
		txs:      make(map[uuid.UUID]models.Transaction),
		p2p:      make(map[uuid.UUID]models.P2PTrade),
	}
}

// Compile-time interface checks.
var (
	_ models.AssetStore       = (*AssetStore)(nil)
	_ models.TransactionStore = (*TransactionStore)(nil)
	_ models.P2PStore         = (*P2PStore)(nil)
	_ models.SnapshotStore    = (*SnapshotStore)(nil)
)

/* ---- assets ---- */

type AssetStore struct{ s *Store }

func NewAssetStore(s *Store) *AssetStore { return &AssetStore{s: s} }

func (r *AssetStore) Ensure(ctx context.Context, symbol, displayName string) (*models.Asset, error) {
	symbol = models.NormalizeSymbol(symbol)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.bySymbol[symbol]; ok {
		a := r.s.assets[id]
		return &a, nil
	}
	a := models.Asset{
		ID:          uuid.New(),
		Symbol:      symbol,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	r.s.assets[a.ID] = a
	r.s.bySymbol[symbol] = a.ID
	return &a, nil
}

func (r *AssetStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *AssetStore) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.bySymbol[models.NormalizeSymbol(symbol)]
	if !ok {
		return nil, models.ErrNotFound
	}
	a := r.s.assets[id]
	return &a, nil
}

func (r *AssetStore) List(ctx context.Context) ([]models.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Asset, 0, len(r.s.assets))
	for _, a := range r.s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

/* ---- transactions ---- */

type TransactionStore struct{ s *Store }

func NewTransactionStore(s *Store) *TransactionStore { return &TransactionStore{s: s} }

func (r *TransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txs[tx.ID] = *tx
	return nil
}

func (r *TransactionStore) InsertPair(ctx context.Context, funding, purchase *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txs[funding.ID] = *funding
	r.s.txs[purchase.ID] = *purchase
	return nil
}

func (r *TransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.txs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &tx, nil
}

func (r *TransactionStore) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range r.s.txs {
		if tx.AssetID == assetID {
			out = append(out, tx)
		}
	}
	sortByOccurredAt(out)
	return out, nil
}

func (r *TransactionStore) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]models.Transaction, 0, len(r.s.txs))
	for _, tx := range r.s.txs {
		all = append(all, tx)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.txs[tx.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.txs[tx.ID] = *tx
	return nil
}

func (r *TransactionStore) UpdatePair(ctx context.Context, a, b *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.txs[a.ID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := r.s.txs[b.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.txs[a.ID] = *a
	r.s.txs[b.ID] = *b
	return nil
}

func (r *TransactionStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txs[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(r.s.txs, id)
	if tx.LinkedTransactionID != nil {
		delete(r.s.txs, *tx.LinkedTransactionID)
	}
	return nil
}

func (r *TransactionStore) Orphans(ctx context.Context) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range r.s.txs {
		if tx.LinkedTransactionID == nil {
			continue
		}
		if _, ok := r.s.txs[*tx.LinkedTransactionID]; !ok {
			out = append(out, tx)
		}
	}
	sortByOccurredAt(out)
	return out, nil
}

func sortByOccurredAt(txs []models.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].OccurredAt.Equal(txs[j].OccurredAt) {
			return txs[i].CreatedAt.Before(txs[j].CreatedAt)
		}
		return txs[i].OccurredAt.Before(txs[j].OccurredAt)
	})
}

/* ---- p2p trades ---- */

type P2PStore struct{ s *Store }

func NewP2PStore(s *Store) *P2PStore { return &P2PStore{s: s} }

func (r *P2PStore) Insert(ctx context.Context, trade *models.P2PTrade, leg *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txs[leg.ID] = *leg
	r.s.p2p[trade.ID] = *trade
	return nil
}

func (r *P2PStore) List(ctx context.Context, limit, offset int) ([]models.P2PTrade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]models.P2PTrade, 0, len(r.s.p2p))
	for _, t := range r.s.p2p {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

/* ---- snapshots ---- */

type SnapshotStore struct{ s *Store }

func NewSnapshotStore(s *Store) *SnapshotStore { return &SnapshotStore{s: s} }

func (r *SnapshotStore) Insert(ctx context.Context, snap *models.PortfolioSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.snapshots = append(r.s.snapshots, *snap)
	return nil
}

func (r *SnapshotStore) List(ctx context.Context, limit int) ([]models.PortfolioSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.PortfolioSnapshot, len(r.s.snapshots))
	copy(out, r.s.snapshots)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *SnapshotStore) GetLatest(ctx context.Context) (*models.PortfolioSnapshot, error) {
	snaps, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, models.ErrNotFound
	}
	return &snaps[0], nil
}
