package domain

import "context"

// ConfigRepository stores gateway configurations.
type ConfigRepository interface {
	// GetActiveConfig returns the first stored configuration, or nil, nil if there is none.
	GetActiveConfig(ctx context.Context) (*GatewayConfig, error)
	CreateConfig(ctx context.Context, cfg GatewayConfig) (*GatewayConfig, error)
}

// TemplateRepository stores template texts.
type TemplateRepository interface {
	// ListTemplateTexts returns all templates ordered by id.
	ListTemplateTexts(ctx context.Context) ([]TemplateText, error)
	CreateTemplateText(ctx context.Context, text string) (*TemplateText, error)
}

// BufferRepository is the durable queue of undelivered messages.
type BufferRepository interface {
	// ListBufferEntries returns a snapshot of all entries in insertion order.
	ListBufferEntries(ctx context.Context) ([]BufferEntry, error)
	InsertBufferEntry(ctx context.Context, recipient, text, credential string) (*BufferEntry, error)
	// DeleteBufferEntry removes an entry in its own transaction. Deleting an
	// entry that is already gone is not an error.
	DeleteBufferEntry(ctx context.Context, id int64) error
}
