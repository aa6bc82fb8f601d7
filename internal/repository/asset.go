package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

// AssetRepo is the Postgres-backed asset registry.
type AssetRepo struct {
	pool *pgxpool.Pool
}

func NewAssetRepo(pool *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

var _ models.AssetStore = (*AssetRepo)(nil)

const assetColumns = `id, symbol, display_name, created_at`

// Ensure is find-or-create on the normalized symbol. The insert uses
// ON CONFLICT DO NOTHING against the symbol unique index, then the row
// is re-read, so concurrent calls all land on the same row.
func (r *AssetRepo) Ensure(ctx context.Context, symbol, displayName string) (*models.Asset, error) {
	symbol = models.NormalizeSymbol(symbol)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO assets (id, symbol, display_name, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (symbol) DO NOTHING`,
		uuid.New(), symbol, displayName, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	return r.GetBySymbol(ctx, symbol)
}

func (r *AssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	return scanAsset(row)
}

func (r *AssetRepo) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE symbol = $1`,
		models.NormalizeSymbol(symbol))
	return scanAsset(row)
}

func (r *AssetRepo) List(ctx context.Context) ([]models.Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.DisplayName, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(&a.ID, &a.Symbol, &a.DisplayName, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
