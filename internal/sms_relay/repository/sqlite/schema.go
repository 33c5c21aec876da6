package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sms_config (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		main_gateway_url TEXT NOT NULL,
		backup_gateway_url TEXT NOT NULL,
		main_gateway_password TEXT NOT NULL DEFAULT '',
		backup_gateway_api_id TEXT NOT NULL DEFAULT '',
		regions TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS textsms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sms_buffer (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipient TEXT NOT NULL,
		text TEXT NOT NULL,
		password TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
}

// Migrate creates the relay tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
