package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			author_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			parent_id TEXT,
			sub_folder_ids TEXT[] NOT NULL DEFAULT '{}',
			file_ids TEXT[] NOT NULL DEFAULT '{}',
			size BIGINT NOT NULL DEFAULT 0,
			is_starred BOOLEAN NOT NULL DEFAULT FALSE,
			is_trashed BOOLEAN NOT NULL DEFAULT FALSE,
			trashed_by TEXT,
			quick_access BOOLEAN NOT NULL DEFAULT FALSE,
			is_submission BOOLEAN NOT NULL DEFAULT FALSE,
			shared_to TEXT[] NOT NULL DEFAULT '{}',
			permissions TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_opened_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			folder_id TEXT,
			author_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			blob_key TEXT NOT NULL,
			shared_to TEXT[] NOT NULL DEFAULT '{}',
			permissions TEXT[] NOT NULL DEFAULT '{}',
			is_starred BOOLEAN NOT NULL DEFAULT FALSE,
			is_trashed BOOLEAN NOT NULL DEFAULT FALSE,
			trashed_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_opened_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Requirements + ` (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author_id TEXT NOT NULL,
			recipients JSONB NOT NULL DEFAULT '[]',
			folder_id TEXT NOT NULL,
			file_type TEXT NOT NULL,
			max_size BIGINT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.RequireOrders + ` (
			user_id TEXT PRIMARY KEY,
			waiting TEXT[] NOT NULL DEFAULT '{}',
			processing TEXT[] NOT NULL DEFAULT '{}',
			done TEXT[] NOT NULL DEFAULT '{}',
			cancel TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`ALTER TABLE ` + tables.Folders + ` ADD COLUMN IF NOT EXISTS trashed_by TEXT`,
		`ALTER TABLE ` + tables.Files + ` ADD COLUMN IF NOT EXISTS trashed_by TEXT`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `folders_parent ON ` + tables.Folders + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `folders_owner ON ` + tables.Folders + `(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `folders_shared ON ` + tables.Folders + ` USING GIN (shared_to)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `files_folder ON ` + tables.Files + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `files_owner ON ` + tables.Files + `(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `files_shared ON ` + tables.Files + ` USING GIN (shared_to)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `requirements_author ON ` + tables.Requirements + `(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `requirements_folder ON ` + tables.Requirements + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `requirements_recipients ON ` + tables.Requirements + ` USING GIN (recipients jsonb_path_ops)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
