package postgres

import (
	"context"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ domain.ConfigRepository   = (*PgConfigRepository)(nil)
	_ domain.TemplateRepository = (*PgTemplateRepository)(nil)
	_ domain.BufferRepository   = (*PgBufferRepository)(nil)
)
