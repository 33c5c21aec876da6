package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/jackc/pgx/v5"
)

type PgConfigRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewPgConfigRepository(db DBTX, logger *slog.Logger) *PgConfigRepository {
	return &PgConfigRepository{db: db, logger: logger.With("component", "config_repository_pg")}
}

func (r *PgConfigRepository) GetActiveConfig(ctx context.Context) (*domain.GatewayConfig, error) {
	query := `SELECT id, main_gateway_url, backup_gateway_url, main_gateway_password, backup_gateway_api_id, regions
		FROM sms_config ORDER BY id LIMIT 1`

	var cfg domain.GatewayConfig
	var regions []byte
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.ID, &cfg.PrimaryURL, &cfg.BackupURL, &cfg.PrimaryCredential, &cfg.BackupAccountID, &regions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error querying gateway configuration", "error", err)
		return nil, fmt.Errorf("querying gateway configuration: %w", err)
	}
	if len(regions) > 0 {
		if err := json.Unmarshal(regions, &cfg.RegionRules); err != nil {
			return nil, fmt.Errorf("decoding regions of config %d: %w", cfg.ID, err)
		}
	}
	return &cfg, nil
}

func (r *PgConfigRepository) CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	regions, err := marshalRegions(cfg.RegionRules)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO sms_config (main_gateway_url, backup_gateway_url, main_gateway_password, backup_gateway_api_id, regions)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRow(ctx, query,
		cfg.PrimaryURL, cfg.BackupURL, cfg.PrimaryCredential, cfg.BackupAccountID, regions,
	).Scan(&cfg.ID); err != nil {
		r.logger.ErrorContext(ctx, "Error inserting gateway configuration", "error", err)
		return nil, fmt.Errorf("inserting gateway configuration: %w", err)
	}
	return &cfg, nil
}

func marshalRegions(rules map[string]any) ([]byte, error) {
	if rules == nil {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("encoding regions: %w", err)
	}
	return b, nil
}
