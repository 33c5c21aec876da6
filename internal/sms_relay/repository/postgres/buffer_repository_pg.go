package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/jackc/pgx/v5"
)

type PgBufferRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewPgBufferRepository(db DBTX, logger *slog.Logger) *PgBufferRepository {
	return &PgBufferRepository{db: db, logger: logger.With("component", "buffer_repository_pg")}
}

func (r *PgBufferRepository) ListBufferEntries(ctx context.Context) ([]domain.BufferEntry, error) {
	query := `SELECT id, recipient, text, password, created_at FROM sms_buffer ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying buffer entries", "error", err)
		return nil, fmt.Errorf("querying buffer entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.BufferEntry
	for rows.Next() {
		var e domain.BufferEntry
		if err := rows.Scan(&e.ID, &e.Recipient, &e.Text, &e.Credential, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning buffer entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buffer entry rows: %w", err)
	}
	return entries, nil
}

func (r *PgBufferRepository) InsertBufferEntry(ctx context.Context, recipient, text, credential string) (*domain.BufferEntry, error) {
	e := domain.BufferEntry{Recipient: recipient, Text: text, Credential: credential}
	query := `INSERT INTO sms_buffer (recipient, text, password) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, query, recipient, text, credential).Scan(&e.ID, &e.CreatedAt); err != nil {
		r.logger.ErrorContext(ctx, "Error inserting buffer entry", "recipient", recipient, "error", err)
		return nil, fmt.Errorf("inserting buffer entry: %w", err)
	}
	return &e, nil
}

func (r *PgBufferRepository) DeleteBufferEntry(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM sms_buffer WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			r.logger.DebugContext(ctx, "Buffer entry already removed", "entry_id", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting buffer entry %d: %w", id, err)
	}
	return nil
}
