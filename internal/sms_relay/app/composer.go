package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
)

// codeLength is the length, in characters, of a verification code.
const codeLength = 4

// TemplatePolicy decides which template prefixes a verification code.
type TemplatePolicy string

const (
	// TemplatePolicyFirst always uses the first template.
	TemplatePolicyFirst TemplatePolicy = "first"
	// TemplatePolicyRoundRobin cycles through the templates in order.
	TemplatePolicyRoundRobin TemplatePolicy = "round_robin"
)

// ParseTemplatePolicy maps a config value to a policy.
func ParseTemplatePolicy(s string) (TemplatePolicy, error) {
	switch TemplatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TemplatePolicyFirst:
		return TemplatePolicyFirst, nil
	case TemplatePolicyRoundRobin:
		return TemplatePolicyRoundRobin, nil
	default:
		return "", fmt.Errorf("unknown template policy %q", s)
	}
}

// MessageComposer builds the final outgoing text.
type MessageComposer struct {
	templates domain.TemplateRepository
	policy    TemplatePolicy
	next      atomic.Uint64
}

func NewMessageComposer(templates domain.TemplateRepository, policy TemplatePolicy) *MessageComposer {
	if policy == "" {
		policy = TemplatePolicyFirst
	}
	return &MessageComposer{templates: templates, policy: policy}
}

// Compose returns raw unchanged unless it is a four-character code, in which
// case a template text and a single space are prepended.
func (c *MessageComposer) Compose(ctx context.Context, raw string) (string, error) {
	if utf8.RuneCountInString(raw) != codeLength {
		return raw, nil
	}
	prefix, err := c.nextTemplate(ctx)
	if err != nil {
		return "", err
	}
	return prefix + " " + raw, nil
}

func (c *MessageComposer) nextTemplate(ctx context.Context) (string, error) {
	texts, err := c.templates.ListTemplateTexts(ctx)
	if err != nil {
		return "", fmt.Errorf("listing template texts: %w", err)
	}
	if len(texts) == 0 {
		return "", nil
	}
	if c.policy == TemplatePolicyRoundRobin {
		i := (c.next.Add(1) - 1) % uint64(len(texts))
		return texts[i].Text, nil
	}
	return texts[0].Text, nil
}
