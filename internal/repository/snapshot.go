package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

var _ models.SnapshotStore = (*SnapshotRepo)(nil)

const snapshotColumns = `id, total_value_usd, total_value_vnd, total_invested_usd,
	unrealized_pl_usd, realized_pl_usd, usd_vnd_rate, created_at`

func (r *SnapshotRepo) Insert(ctx context.Context, s *models.PortfolioSnapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_snapshots
		 (id, total_value_usd, total_value_vnd, total_invested_usd,
		  unrealized_pl_usd, realized_pl_usd, usd_vnd_rate, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.TotalValueUsd, s.TotalValueVnd, s.TotalInvestedUsd,
		s.UnrealizedPLUsd, s.RealizedPLUsd, s.UsdVndRate, s.CreatedAt,
	)
	return err
}

func (r *SnapshotRepo) List(ctx context.Context, limit int) ([]models.PortfolioSnapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM portfolio_snapshots
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PortfolioSnapshot
	for rows.Next() {
		var s models.PortfolioSnapshot
		if err := rows.Scan(
			&s.ID, &s.TotalValueUsd, &s.TotalValueVnd, &s.TotalInvestedUsd,
			&s.UnrealizedPLUsd, &s.RealizedPLUsd, &s.UsdVndRate, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SnapshotRepo) GetLatest(ctx context.Context) (*models.PortfolioSnapshot, error) {
	var s models.PortfolioSnapshot
	err := r.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM portfolio_snapshots
		 ORDER BY created_at DESC LIMIT 1`).Scan(
		&s.ID, &s.TotalValueUsd, &s.TotalValueVnd, &s.TotalInvestedUsd,
		&s.UnrealizedPLUsd, &s.RealizedPLUsd, &s.UsdVndRate, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
