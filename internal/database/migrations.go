package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"planner/pkg/logger"
)

// migration holds a single schema migration with its target version and statements.
type migration struct {
	version    int
	statements []string
}

// migrations is the ordered list of schema migrations. The DDL sticks to types
// both PostgreSQL and SQLite accept so every driver shares one schema.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id         TEXT PRIMARY KEY,
				subject    TEXT NOT NULL UNIQUE,
				email      TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS items (
				id                    TEXT PRIMARY KEY,
				user_id               TEXT NOT NULL,
				parent_id             TEXT,
				text                  TEXT NOT NULL,
				completed             BOOLEAN NOT NULL DEFAULT FALSE,
				main_order            INTEGER,
				type                  TEXT NOT NULL DEFAULT 'task',
				assigned_date         TEXT,
				day_order             INTEGER,
				expanded              BOOLEAN NOT NULL DEFAULT FALSE,
				color                 TEXT,
				time_estimate_hours   INTEGER NOT NULL DEFAULT 0,
				time_estimate_minutes INTEGER NOT NULL DEFAULT 0,
				created_at            TIMESTAMP NOT NULL,
				updated_at            TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_siblings ON items(user_id, parent_id, completed, main_order)`,
			`CREATE INDEX IF NOT EXISTS idx_items_day ON items(user_id, assigned_date, day_order)`,
			`CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id)`,
			`CREATE TABLE IF NOT EXISTS calendar_days (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				date       TEXT NOT NULL,
				items      TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE (user_id, date)
			)`,
		},
	},
}

// Migrate applies outstanding migrations in order and records each version.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}
	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration v%d: %w", m.version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
		logger.Info(ctx, "Schema migration applied", "version", m.version)
	}
	return nil
}
