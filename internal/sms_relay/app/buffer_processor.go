package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Composer builds the outgoing text for a buffered message.
type Composer interface {
	Compose(ctx context.Context, raw string) (string, error)
}

// Sender delivers one message through the gateways.
type Sender interface {
	Send(ctx context.Context, recipient, text, credential string) domain.DeliveryResult
}

// ProcessorConfig holds the pacing settings of the BufferProcessor.
type ProcessorConfig struct {
	// ItemDelay is waited after every entry, delivered or not.
	ItemDelay time.Duration
	// RetryBackoff, when positive, is waited before re-reading the buffer after
	// a snapshot that delivered nothing. It doubles on each consecutive empty
	// snapshot up to MaxRetryBackoff. Zero keeps retrying immediately.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
}

// PassStats summarises one processing pass.
type PassStats struct {
	PassID    string
	Snapshots int
	Attempted int
	Delivered int
	Failed    int
}

// BufferProcessor drains the buffer. Passes never overlap: RunPass holds a
// mutex for its whole duration, and Run is the only consumer of the
// capacity-one wake channel, so triggers that arrive mid-pass collapse into a
// single follow-up pass.
type BufferProcessor struct {
	buffer   domain.BufferRepository
	composer Composer
	sender   Sender
	logger   *slog.Logger
	cfg      ProcessorConfig

	mu   sync.Mutex
	wake chan struct{}
}

func NewBufferProcessor(buffer domain.BufferRepository, composer Composer, sender Sender, logger *slog.Logger, cfg ProcessorConfig) *BufferProcessor {
	return &BufferProcessor{
		buffer:   buffer,
		composer: composer,
		sender:   sender,
		logger:   logger.With("component", "buffer_processor"),
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
	}
}

// Trigger asks Run to start a pass. It never blocks.
func (p *BufferProcessor) Trigger(_ context.Context) error {
	select {
	case p.wake <- struct{}{}:
	default:
		// A pass is already pending.
	}
	return nil
}

// Run processes passes on demand until ctx is cancelled.
func (p *BufferProcessor) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Buffer processor started", "item_delay", p.cfg.ItemDelay.String())
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Buffer processor stopped")
			return nil
		case <-p.wake:
			stats, err := p.RunPass(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				p.logger.ErrorContext(ctx, "Processing pass failed", "pass_id", stats.PassID, "error", err)
			}
		}
	}
}

// RunPass drains the buffer until a snapshot read comes back empty.
// Cancelling ctx stops the pass between entries; an attempt already in flight
// is completed, including the removal of a delivered entry.
func (p *BufferProcessor) RunPass(ctx context.Context) (PassStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PassStats{PassID: uuid.NewString()}
	logger := p.logger.With("pass_id", stats.PassID)
	timer := prometheus.NewTimer(passDurationHist)
	defer timer.ObserveDuration()

	var backoff time.Duration
	for {
		if err := ctx.Err(); err != nil {
			passesCounter.WithLabelValues("stopped").Inc()
			return stats, err
		}

		entries, err := p.buffer.ListBufferEntries(ctx)
		if err != nil {
			passesCounter.WithLabelValues("error").Inc()
			return stats, fmt.Errorf("listing buffer entries: %w", err)
		}
		bufferSizeGauge.Set(float64(len(entries)))
		if len(entries) == 0 {
			if stats.Snapshots > 0 {
				logger.InfoContext(ctx, "Buffer drained", "snapshots", stats.Snapshots, "attempted", stats.Attempted, "delivered", stats.Delivered, "failed", stats.Failed)
			}
			passesCounter.WithLabelValues("drained").Inc()
			return stats, nil
		}

		stats.Snapshots++
		logger.DebugContext(ctx, "Processing buffer snapshot", "entries", len(entries), "snapshot", stats.Snapshots)

		delivered := 0
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				passesCounter.WithLabelValues("stopped").Inc()
				return stats, err
			}

			stats.Attempted++
			if p.processEntry(ctx, logger, entry) {
				stats.Delivered++
				delivered++
			} else {
				stats.Failed++
			}

			if err := sleepCtx(ctx, p.cfg.ItemDelay); err != nil {
				passesCounter.WithLabelValues("stopped").Inc()
				return stats, err
			}
		}

		if delivered > 0 {
			backoff = 0
			continue
		}
		backoff = p.nextBackoff(backoff)
		if backoff > 0 {
			logger.InfoContext(ctx, "No entry delivered in snapshot, backing off", "backoff", backoff.String())
			if err := sleepCtx(ctx, backoff); err != nil {
				passesCounter.WithLabelValues("stopped").Inc()
				return stats, err
			}
		}
	}
}

// processEntry reports whether the entry was delivered and removed.
func (p *BufferProcessor) processEntry(ctx context.Context, logger *slog.Logger, entry domain.BufferEntry) bool {
	attemptCtx := context.WithoutCancel(ctx)
	logger = logger.With("entry_id", entry.ID, "recipient", entry.Recipient)

	text, err := p.composer.Compose(attemptCtx, entry.Text)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to compose message, entry retained", "error", err)
		entriesProcessedCounter.WithLabelValues("compose_error").Inc()
		return false
	}

	result := p.sender.Send(attemptCtx, entry.Recipient, text, entry.Credential)
	if !result.Delivered {
		logger.WarnContext(ctx, "Delivery failed, entry retained", "outcome", result.Outcome(), "error", result.Err)
		entriesProcessedCounter.WithLabelValues(result.Outcome()).Inc()
		return false
	}

	if err := p.buffer.DeleteBufferEntry(attemptCtx, entry.ID); err != nil {
		// The entry will be sent again on the next snapshot.
		logger.ErrorContext(ctx, "Message delivered but entry could not be removed", "gateway", result.Leg, "error", err)
		entriesProcessedCounter.WithLabelValues("delete_error").Inc()
		return false
	}

	logger.InfoContext(ctx, "Message delivered", "gateway", result.Leg, "status_code", result.StatusCode)
	entriesProcessedCounter.WithLabelValues("delivered").Inc()
	return true
}

func (p *BufferProcessor) nextBackoff(current time.Duration) time.Duration {
	if p.cfg.RetryBackoff <= 0 {
		return 0
	}
	if current <= 0 {
		return p.cfg.RetryBackoff
	}
	next := current * 2
	if p.cfg.MaxRetryBackoff > 0 && next > p.cfg.MaxRetryBackoff {
		next = p.cfg.MaxRetryBackoff
	}
	return next
}

// sleepCtx waits for d on a timer, returning early with ctx's error.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
