package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

// GatewayAttempter performs one classified delivery attempt.
type GatewayAttempter interface {
	Attempt(ctx context.Context, leg domain.GatewayLeg, endpoint string, params domain.DeliveryParams) domain.DeliveryResult
}

// FailoverSender tries the primary gateway and falls back to the backup once.
type FailoverSender struct {
	configs domain.ConfigRepository
	client  GatewayAttempter
	logger  *slog.Logger
}

func NewFailoverSender(configs domain.ConfigRepository, client GatewayAttempter, logger *slog.Logger) *FailoverSender {
	return &FailoverSender{
		configs: configs,
		client:  client,
		logger:  logger.With("component", "failover_sender"),
	}
}

// Send makes at most two attempts: primary, then backup with the account id
// added. The backup result is returned as is.
func (s *FailoverSender) Send(ctx context.Context, recipient, text, credential string) domain.DeliveryResult {
	cfg, err := s.configs.GetActiveConfig(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load gateway configuration", "error", err)
		return domain.Failed(domain.LegNone, 0, fmt.Errorf("loading gateway configuration: %w", err))
	}
	if cfg == nil {
		s.logger.WarnContext(ctx, "No gateway configuration found", "recipient", recipient)
		return domain.Failed(domain.LegNone, 0, domain.ErrNoConfiguration)
	}

	params := domain.DeliveryParams{Recipient: recipient, Text: text, Credential: credential}

	primary := s.client.Attempt(ctx, domain.LegPrimary, cfg.PrimaryURL, params)
	if primary.Delivered {
		failoverCounter.WithLabelValues("primary_delivered").Inc()
		return primary
	}

	s.logger.WarnContext(ctx, "Primary gateway failed, switching to backup", "recipient", recipient, "error", primary.Err)
	backup := s.client.Attempt(ctx, domain.LegBackup, cfg.BackupURL, params.WithAccountID(cfg.BackupAccountID))
	if backup.Delivered {
		failoverCounter.WithLabelValues("backup_delivered").Inc()
		s.logger.InfoContext(ctx, "Message delivered via backup gateway", "recipient", recipient)
		return backup
	}

	failoverCounter.WithLabelValues("both_failed").Inc()
	s.logger.ErrorContext(ctx, "Both gateways failed", "recipient", recipient, "primary_error", primary.Err, "backup_error", backup.Err)
	return backup
}
