package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Tally store (PostgreSQL).
var Migrations = migrate.NewGroup("tally")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tally_items",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_items (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL DEFAULT '',
    category          TEXT NOT NULL DEFAULT '',
    unit              TEXT NOT NULL DEFAULT '',
    par_level         DOUBLE PRECISION NOT NULL DEFAULT 0,
    reorder_point     DOUBLE PRECISION NOT NULL DEFAULT 0,
    supplier_id       TEXT NOT NULL DEFAULT '',
    cost_per_unit     DOUBLE PRECISION NOT NULL DEFAULT 0,
    standardized_name TEXT NOT NULL DEFAULT '',
    notes             TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tally_items_category ON tally_items (category);
CREATE INDEX IF NOT EXISTS idx_tally_items_supplier ON tally_items (supplier_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tally_items_standardized ON tally_items (standardized_name) WHERE standardized_name != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_items`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tally_transactions",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_transactions (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL DEFAULT '',
    type       TEXT NOT NULL DEFAULT '',
    quantity   DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_cost  DOUBLE PRECISION,
    timestamp  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    user_name  TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    source     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tally_txns_item_time ON tally_transactions (item_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_tally_txns_source_day ON tally_transactions (source, type, timestamp);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_transactions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tally_snapshots",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_snapshots (
    id         TEXT PRIMARY KEY,
    date       TEXT NOT NULL DEFAULT '',
    levels     JSONB NOT NULL DEFAULT '{}',
    created_by TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tally_snapshots_date ON tally_snapshots (date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_snapshots`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tally_categories",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_categories (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL DEFAULT '',
    default_unit            TEXT NOT NULL DEFAULT '',
    requires_refrigeration  BOOLEAN NOT NULL DEFAULT FALSE,
    default_shelf_life_days INT NOT NULL DEFAULT 0,
    display_order           INT NOT NULL DEFAULT 0,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tally_categories_name ON tally_categories (name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_categories`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tally_suppliers",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_suppliers (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    contact_email TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    delivery_days JSONB NOT NULL DEFAULT '[]',
    notes         TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_suppliers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tally_txn_backups",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tally_txn_backups (
    id        TEXT PRIMARY KEY,
    txn_id    TEXT NOT NULL DEFAULT '',
    item_id   TEXT NOT NULL DEFAULT '',
    type      TEXT NOT NULL DEFAULT '',
    quantity  DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_cost DOUBLE PRECISION,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    user_name TEXT NOT NULL DEFAULT '',
    notes     TEXT NOT NULL DEFAULT '',
    source    TEXT NOT NULL DEFAULT '',
    purged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tally_backups_purged ON tally_txn_backups (purged_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tally_txn_backups`)
				return err
			},
		},
	)
}
