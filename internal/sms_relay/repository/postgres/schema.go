package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sms_config (
		id BIGSERIAL PRIMARY KEY,
		main_gateway_url TEXT NOT NULL,
		backup_gateway_url TEXT NOT NULL,
		main_gateway_password TEXT NOT NULL DEFAULT '',
		backup_gateway_api_id TEXT NOT NULL DEFAULT '',
		regions JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE TABLE IF NOT EXISTS textsms (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sms_buffer (
		id BIGSERIAL PRIMARY KEY,
		recipient TEXT NOT NULL,
		text TEXT NOT NULL,
		password TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the relay tables if they do not exist.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
