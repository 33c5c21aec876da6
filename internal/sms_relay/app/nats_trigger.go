package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of the NATS client used to send triggers.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Subscriber is the subset of the NATS client used to receive triggers.
type Subscriber interface {
	Subscribe(ctx context.Context, subject, queueGroup string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// TriggerEvent is the payload published on the trigger subject.
type TriggerEvent struct {
	Source string    `json:"source"`
	SentAt time.Time `json:"sent_at"`
}

// NatsPassTrigger publishes triggers for a worker running in another process.
type NatsPassTrigger struct {
	publisher Publisher
	subject   string
	source    string
}

func NewNatsPassTrigger(publisher Publisher, subject, source string) *NatsPassTrigger {
	return &NatsPassTrigger{publisher: publisher, subject: subject, source: source}
}

func (t *NatsPassTrigger) Trigger(ctx context.Context) error {
	data, err := json.Marshal(TriggerEvent{Source: t.source, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal trigger event: %w", err)
	}
	return t.publisher.Publish(ctx, t.subject, data)
}

// TriggerHandler forwards every message received on the trigger subject to
// trigger. Malformed payloads still trigger a pass.
func TriggerHandler(trigger PassTrigger, logger *slog.Logger) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev TriggerEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Warn("Malformed trigger payload", "subject", msg.Subject, "error", err, "data", string(msg.Data))
		} else {
			logger.Debug("Received pass trigger", "subject", msg.Subject, "source", ev.Source)
		}
		if err := trigger.Trigger(context.Background()); err != nil {
			logger.Error("Failed to trigger processing pass", "error", err)
		}
	}
}

// StartTriggerConsumer subscribes trigger to subject within queueGroup.
func StartTriggerConsumer(ctx context.Context, sub Subscriber, subject, queueGroup string, trigger PassTrigger, logger *slog.Logger) (*nats.Subscription, error) {
	logger.InfoContext(ctx, "Starting trigger consumer", "subject", subject, "queue_group", queueGroup)
	s, err := sub.Subscribe(ctx, subject, queueGroup, TriggerHandler(trigger, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to trigger subject '%s': %w", subject, err)
	}
	return s, nil
}
