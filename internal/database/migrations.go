package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		board_type TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		columns TEXT NOT NULL DEFAULT '[]',
		swimlane_config TEXT,
		view_settings TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL,
		UNIQUE (organization_id, board_type)
	)`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		organization_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		solicitation_number TEXT NOT NULL DEFAULT '',
		agency TEXT NOT NULL DEFAULT '',
		contract_value REAL,
		due_date TEXT,
		current_phase TEXT NOT NULL DEFAULT '',
		custom_workflow_stage_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		checklist_status TEXT NOT NULL DEFAULT '{}',
		action_required INTEGER NOT NULL DEFAULT 0,
		action_required_description TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_board ON proposals(board_id, created_at)`,
}

// runMigrations creates the database schema if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", i, err)
			}
		}
		return nil
	})
}
