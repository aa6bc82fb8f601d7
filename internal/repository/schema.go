package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on boot if they do not exist.
//
// The unique index on assets.symbol is load-bearing: without it,
// concurrent Ensure calls race and split one asset's holdings across
// duplicate rows.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS assets_symbol_key ON assets (symbol)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			asset_id UUID NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK (kind IN ('buy','sell')),
			quantity NUMERIC NOT NULL,
			price_per_unit NUMERIC NOT NULL,
			total_cash_amount NUMERIC NOT NULL,
			fee NUMERIC NOT NULL DEFAULT 0,
			native_fee NUMERIC NOT NULL DEFAULT 0,
			native_fee_unit TEXT NOT NULL DEFAULT 'USD',
			funding_source TEXT NOT NULL DEFAULT 'CASH' CHECK (funding_source IN ('CASH','USDT')),
			linked_transaction_id UUID,
			exchange TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_asset_idx ON transactions (asset_id, occurred_at)`,
		`CREATE TABLE IF NOT EXISTS p2p_trades (
			id UUID PRIMARY KEY,
			transaction_id UUID NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
			side TEXT NOT NULL CHECK (side IN ('buy','sell')),
			usdt_amount NUMERIC NOT NULL,
			vnd_amount NUMERIC NOT NULL,
			rate NUMERIC NOT NULL,
			counterparty TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			id UUID PRIMARY KEY,
			total_value_usd NUMERIC NOT NULL,
			total_value_vnd NUMERIC NOT NULL,
			total_invested_usd NUMERIC NOT NULL,
			unrealized_pl_usd NUMERIC NOT NULL,
			realized_pl_usd NUMERIC NOT NULL,
			usd_vnd_rate NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
