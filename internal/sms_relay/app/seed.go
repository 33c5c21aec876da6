package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

// SeedTemplateTexts inserts texts when the template table is empty and
// returns how many were inserted.
func SeedTemplateTexts(ctx context.Context, repo domain.TemplateRepository, texts []string, logger *slog.Logger) (int, error) {
	existing, err := repo.ListTemplateTexts(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing template texts: %w", err)
	}
	if len(existing) > 0 {
		logger.DebugContext(ctx, "Template texts already present, skipping seed", "count", len(existing))
		return 0, nil
	}

	for i, text := range texts {
		if _, err := repo.CreateTemplateText(ctx, text); err != nil {
			return i, fmt.Errorf("seeding template text %d: %w", i, err)
		}
	}
	logger.InfoContext(ctx, "Seeded template texts", "count", len(texts))
	return len(texts), nil
}
