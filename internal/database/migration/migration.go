package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// steps are applied in order, each once, and recorded in schema_migrations.
var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_accounts",
		SQL: `CREATE TABLE IF NOT EXISTS accounts (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL DEFAULT '',
  email      TEXT        NOT NULL UNIQUE,
  role       TEXT        NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin', 'superadmin')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_uploads",
		SQL: `CREATE TABLE IF NOT EXISTS uploads (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id      UUID        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
  filename      TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  content_type  TEXT        NOT NULL,
  column_names  JSONB       NOT NULL DEFAULT '[]'::jsonb,
  column_types  JSONB       NOT NULL DEFAULT '{}'::jsonb,
  data_rows     JSONB       NOT NULL DEFAULT '[]'::jsonb,
  row_count     INTEGER     NOT NULL DEFAULT 0 CHECK (row_count >= 0),
  status        TEXT        NOT NULL CHECK (status IN ('uploaded', 'failed')),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK ((status = 'uploaded') = (row_count > 0))
);`,
	},
	{
		Name: "create_index_uploads_owner_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_uploads_owner_created_at ON uploads (owner_id, created_at DESC);`,
	},
	{
		Name: "create_index_uploads_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads (created_at);`,
	},
	{
		Name: "create_index_accounts_role",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts (role);`,
	},
}

const createTrackingTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations.
// Each step runs in its own transaction together with its tracking row.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	log := slog.With("component", "database", "db_host", dbHost)
	log.Info("db_migration_check", "status", "starting")

	if _, err := db.ExecContext(ctx, createTrackingTable); err != nil {
		log.Error("db_migration_failed", "status", "error", "error_message", err.Error())
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, step := range steps {
		var exists bool
		err := db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)", step.Name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", step.Name, err)
		}
		if exists {
			continue
		}

		stepStart := time.Now()
		if err := apply(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		applied++
		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"applied", applied,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func apply(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", step.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
