package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

type P2PRepo struct {
	pool *pgxpool.Pool
}

func NewP2PRepo(pool *pgxpool.Pool) *P2PRepo {
	return &P2PRepo{pool: pool}
}

var _ models.P2PStore = (*P2PRepo)(nil)

// Insert writes the backing USDT ledger leg and the P2P row in one
// database transaction.
func (r *P2PRepo) Insert(ctx context.Context, trade *models.P2PTrade, leg *models.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertTxSQL, txArgs(leg)...); err != nil {
		return fmt.Errorf("insert ledger leg: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO p2p_trades
		 (id, transaction_id, side, usdt_amount, vnd_amount, rate, counterparty, note, occurred_at, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		trade.ID, trade.TransactionID, trade.Side, trade.UsdtAmount, trade.VndAmount,
		trade.Rate, trade.Counterparty, trade.Note, trade.OccurredAt, trade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert p2p trade: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *P2PRepo) List(ctx context.Context, limit, offset int) ([]models.P2PTrade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, side, usdt_amount, vnd_amount, rate, counterparty, note, occurred_at, created_at
		 FROM p2p_trades ORDER BY occurred_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.P2PTrade
	for rows.Next() {
		var t models.P2PTrade
		if err := rows.Scan(
			&t.ID, &t.TransactionID, &t.Side, &t.UsdtAmount, &t.VndAmount,
			&t.Rate, &t.Counterparty, &t.Note, &t.OccurredAt, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
