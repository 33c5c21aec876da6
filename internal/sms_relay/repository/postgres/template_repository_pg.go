package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

type PgTemplateRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewPgTemplateRepository(db DBTX, logger *slog.Logger) *PgTemplateRepository {
	return &PgTemplateRepository{db: db, logger: logger.With("component", "template_repository_pg")}
}

func (r *PgTemplateRepository) ListTemplateTexts(ctx context.Context) ([]domain.TemplateText, error) {
	query := `SELECT id, text FROM textsms ORDER BY id`
	r.logger.DebugContext(ctx, "Fetching template texts", "query", query)

	rows, err := r.db.Query(ctx, query)
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
		r.logger.ErrorContext(ctx, "Error after iterating template text rows", "error", err)
		return nil, fmt.Errorf("iterating template text rows: %w", err)
	}
	return texts, nil
}

func (r *PgTemplateRepository) CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error) {
	t := domain.TemplateText{Text: text}
	if err := r.db.QueryRow(ctx, `INSERT INTO textsms (text) VALUES ($1) RETURNING id`, text).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("inserting template text: %w", err)
	}
	return &t, nil
}
