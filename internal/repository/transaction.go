package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

// TransactionRepo is the Postgres-backed transaction store. The pair
// operations run inside a single database transaction; the two legs of
// a funded purchase are never visible half-written.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

var _ models.TransactionStore = (*TransactionRepo)(nil)

const txColumns = `id, asset_id, kind, quantity, price_per_unit, total_cash_amount,
	fee, native_fee, native_fee_unit, funding_source, linked_transaction_id,
	exchange, note, occurred_at, created_at`

const insertTxSQL = `INSERT INTO transactions
	(id, asset_id, kind, quantity, price_per_unit, total_cash_amount,
	 fee, native_fee, native_fee_unit, funding_source, linked_transaction_id,
	 exchange, note, occurred_at, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

func txArgs(t *models.Transaction) []any {
	return []any{
		t.ID, t.AssetID, t.Kind, t.Quantity, t.PricePerUnit, t.TotalCashAmount,
		t.Fee, t.NativeFee, t.NativeFeeUnit, t.FundingSource, t.LinkedTransactionID,
		t.Exchange, t.Note, t.OccurredAt, t.CreatedAt,
	}
}

func (r *TransactionRepo) Insert(ctx context.Context, t *models.Transaction) error {
	_, err := r.pool.Exec(ctx, insertTxSQL, txArgs(t)...)
	return err
}

func (r *TransactionRepo) InsertPair(ctx context.Context, funding, purchase *models.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertTxSQL, txArgs(funding)...); err != nil {
		return fmt.Errorf("insert funding leg: %w", err)
	}
	if _, err := tx.Exec(ctx, insertTxSQL, txArgs(purchase)...); err != nil {
		return fmt.Errorf("insert purchase leg: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	return scanTx(row)
}

func (r *TransactionRepo) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE asset_id = $1 ORDER BY occurred_at ASC, created_at ASC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions
		 ORDER BY occurred_at DESC, created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

const updateTxSQL = `UPDATE transactions SET
	quantity = $2, price_per_unit = $3, total_cash_amount = $4, fee = $5,
	native_fee = $6, native_fee_unit = $7, exchange = $8, note = $9, occurred_at = $10
	WHERE id = $1`

func updateArgs(t *models.Transaction) []any {
	return []any{
		t.ID, t.Quantity, t.PricePerUnit, t.TotalCashAmount, t.Fee,
		t.NativeFee, t.NativeFeeUnit, t.Exchange, t.Note, t.OccurredAt,
	}
}

func (r *TransactionRepo) Update(ctx context.Context, t *models.Transaction) error {
	tag, err := r.pool.Exec(ctx, updateTxSQL, updateArgs(t)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) UpdatePair(ctx context.Context, a, b *models.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range []*models.Transaction{a, b} {
		tag, err := tx.Exec(ctx, updateTxSQL, updateArgs(t)...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

// Delete removes the row and its linked leg (if any) in one database
// transaction.
func (r *TransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var linked *uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT linked_transaction_id FROM transactions WHERE id = $1`, id).Scan(&linked)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return err
	}
	if linked != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, *linked); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Orphans returns rows that carry a link to a partner that no longer
// exists. The write path cannot produce these; imported or pre-linkage
// data can.
func (r *TransactionRepo) Orphans(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions t
		 WHERE t.linked_transaction_id IS NOT NULL
		   AND NOT EXISTS (SELECT 1 FROM transactions p WHERE p.id = t.linked_transaction_id)
		 ORDER BY t.occurred_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

// --- scan helpers ---

func scanTx(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.AssetID, &t.Kind, &t.Quantity, &t.PricePerUnit, &t.TotalCashAmount,
		&t.Fee, &t.NativeFee, &t.NativeFeeUnit, &t.FundingSource, &t.LinkedTransactionID,
		&t.Exchange, &t.Note, &t.OccurredAt, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTxs(rows pgx.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.AssetID, &t.Kind, &t.Quantity, &t.PricePerUnit, &t.TotalCashAmount,
			&t.Fee, &t.NativeFee, &t.NativeFeeUnit, &t.FundingSource, &t.LinkedTransactionID,
			&t.Exchange, &t.Note, &t.OccurredAt, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
