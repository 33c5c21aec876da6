// Package repository opens the relay's storage backend selected in config.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/platform/config"
	"github.com/Vsirotkin/SMS/internal/platform/database"
	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/Vsirotkin/SMS/internal/sms_relay/repository/postgres"
	"github.com/Vsirotkin/SMS/internal/sms_relay/repository/sqlite"
)

// Store bundles the three repositories of one backend.
type Store struct {
	Configs   domain.ConfigRepository
	Templates domain.TemplateRepository
	Buffer    domain.BufferRepository

	close func()
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the configured backend and makes sure the schema exists.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool, err := database.NewDBPool(ctx, cfg.PostgresDSN, database.PoolOptions{
			MaxConns:        cfg.PostgresMaxConns,
			MinConns:        cfg.PostgresMinConns,
			MaxConnLifetime: cfg.PostgresMaxConnLifetime,
			MaxConnIdleTime: cfg.PostgresMaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "Connected to PostgreSQL")
		return &Store{
			Configs:   postgres.NewPgConfigRepository(pool, logger),
			Templates: postgres.NewPgTemplateRepository(pool, logger),
			Buffer:    postgres.NewPgBufferRepository(pool, logger),
			close:     pool.Close,
		}, nil

	case config.StorageDriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "Opened SQLite database", "path", cfg.SQLitePath)
		return &Store{
			Configs:   sqlite.NewConfigRepository(db, logger),
			Templates: sqlite.NewTemplateRepository(db, logger),
			Buffer:    sqlite.NewBufferRepository(db, logger),
			close:     func() { db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
