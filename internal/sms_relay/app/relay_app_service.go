package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

// PassTrigger signals that the buffer has work. Implementations must not
// wait for the pass itself.
type PassTrigger interface {
	Trigger(ctx context.Context) error
}

// RelayAppService is the accepting surface: it buffers messages and manages
// gateway configuration and templates.
type RelayAppService struct {
	buffer    domain.BufferRepository
	configs   domain.ConfigRepository
	templates domain.TemplateRepository
	trigger   PassTrigger
	logger    *slog.Logger
}

func NewRelayAppService(
	buffer domain.BufferRepository,
	configs domain.ConfigRepository,
	templates domain.TemplateRepository,
	trigger PassTrigger,
	logger *slog.Logger,
) *RelayAppService {
	return &RelayAppService{
		buffer:    buffer,
		configs:   configs,
		templates: templates,
		trigger:   trigger,
		logger:    logger.With("service", "relay_app"),
	}
}

// EnqueueMessage stores the message and signals the processor. It returns as
// soon as the entry is persisted; a failed signal is logged and the entry is
// picked up by the next pass.
func (s *RelayAppService) EnqueueMessage(ctx context.Context, recipient, text, credential string) (*domain.BufferEntry, error) {
	entry, err := s.buffer.InsertBufferEntry(ctx, recipient, text, credential)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to buffer message", "recipient", recipient, "error", err)
		return nil, fmt.Errorf("buffering message: %w", err)
	}
	messagesEnqueuedCounter.Inc()
	s.logger.InfoContext(ctx, "Message buffered", "entry_id", entry.ID, "recipient", recipient)

	if err := s.trigger.Trigger(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to trigger processing pass; entry stays buffered", "entry_id", entry.ID, "error", err)
	}
	return entry, nil
}

func (s *RelayAppService) CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	created, err := s.configs.CreateConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gateway configuration: %w", err)
	}
	s.logger.InfoContext(ctx, "Gateway configuration created", "config_id", created.ID, "primary_url", created.PrimaryURL, "backup_url", created.BackupURL)
	return created, nil
}

func (s *RelayAppService) CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error) {
	created, err := s.templates.CreateTemplateText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("creating template text: %w", err)
	}
	s.logger.InfoContext(ctx, "Template text created", "template_id", created.ID)
	return created, nil
}
