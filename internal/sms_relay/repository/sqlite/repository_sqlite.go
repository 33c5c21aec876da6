// Package sqlite stores the relay tables in a local SQLite file through
// database/sql and the modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

var (
	_ domain.ConfigRepository   = (*ConfigRepository)(nil)
	_ domain.TemplateRepository = (*TemplateRepository)(nil)
	_ domain.BufferRepository   = (*BufferRepository)(nil)
)

type ConfigRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewConfigRepository(db *sql.DB, logger *slog.Logger) *ConfigRepository {
	return &ConfigRepository{db: db, logger: logger.With("component", "config_repository_sqlite")}
}

func (r *ConfigRepository) GetActiveConfig(ctx context.Context) (*domain.GatewayConfig, error) {
	query := `SELECT id, main_gateway_url, backup_gateway_url, main_gateway_password, backup_gateway_api_id, regions
		FROM sms_config ORDER BY id LIMIT 1`

	var cfg domain.GatewayConfig
	var regions string
	err := r.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.PrimaryURL, &cfg.BackupURL, &cfg.PrimaryCredential, &cfg.BackupAccountID, &regions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error querying gateway configuration", "error", err)
		return nil, fmt.Errorf("querying gateway configuration: %w", err)
	}
	if regions != "" {
		if err := json.Unmarshal([]byte(regions), &cfg.RegionRules); err != nil {
			return nil, fmt.Errorf("decoding regions of config %d: %w", cfg.ID, err)
		}
	}
	return &cfg, nil
}

func (r *ConfigRepository) CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	regions := []byte(`{}`)
	if cfg.RegionRules != nil {
		b, err := json.Marshal(cfg.RegionRules)
		if err != nil {
			return nil, fmt.Errorf("encoding regions: %w", err)
		}
		regions = b
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sms_config (main_gateway_url, backup_gateway_url, main_gateway_password, backup_gateway_api_id, regions)
		VALUES (?, ?, ?, ?, ?)`,
		cfg.PrimaryURL, cfg.BackupURL, cfg.PrimaryCredential, cfg.BackupAccountID, string(regions),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting gateway configuration", "error", err)
		return nil, fmt.Errorf("inserting gateway configuration: %w", err)
	}
	if cfg.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading gateway configuration id: %w", err)
	}
	return &cfg, nil
}

type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger.With("component", "template_repository_sqlite")}
}

func (r *TemplateRepository) ListTemplateTexts(ctx context.Context) ([]domain.TemplateText, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, text FROM textsms ORDER BY id`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying template texts", "error", err)
		return nil, fmt.Errorf("querying template texts: %w", err)
	}
	defer rows.Close()

	var texts []domain.TemplateText
	for rows.Next() {
		var t domain.TemplateText
		if err := rows.Scan(&t.ID, &t.Text); err != nil {
			return nil, fmt.Errorf("scanning template text row: %w", err)
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template text rows: %w", err)
	}
	return texts, nil
}

func (r *TemplateRepository) CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO textsms (text) VALUES (?)`, text)
	if err != nil {
		return nil, fmt.Errorf("inserting template text: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading template text id: %w", err)
	}
	return &domain.TemplateText{ID: id, Text: text}, nil
}

type BufferRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewBufferRepository(db *sql.DB, logger *slog.Logger) *BufferRepository {
	return &BufferRepository{db: db, logger: logger.With("component", "buffer_repository_sqlite")}
}

func (r *BufferRepository) ListBufferEntries(ctx context.Context) ([]domain.BufferEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, recipient, text, password, created_at FROM sms_buffer ORDER BY id`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying buffer entries", "error", err)
		return nil, fmt.Errorf("querying buffer entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.BufferEntry
	for rows.Next() {
		var e domain.BufferEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Recipient, &e.Text, &e.Credential, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning buffer entry row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of buffer entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buffer entry rows: %w", err)
	}
	return entries, nil
}

func (r *BufferRepository) InsertBufferEntry(ctx context.Context, recipient, text, credential string) (*domain.BufferEntry, error) {
	e := domain.BufferEntry{Recipient: recipient, Text: text, Credential: credential, CreatedAt: time.Now().UTC()}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sms_buffer (recipient, text, password, created_at) VALUES (?, ?, ?, ?)`,
		recipient, text, credential, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting buffer entry", "recipient", recipient, "error", err)
		return nil, fmt.Errorf("inserting buffer entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading buffer entry id: %w", err)
	}
	return &e, nil
}

func (r *BufferRepository) DeleteBufferEntry(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete of buffer entry %d: %w", id, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sms_buffer WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting buffer entry %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of buffer entry %d: %w", id, err)
	}
	return nil
}
