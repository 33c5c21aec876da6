package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// NewSweeper returns a stopped cron scheduler that fires trigger on schedule
// (standard cron spec or descriptors such as "@every 5m").
func NewSweeper(schedule string, trigger PassTrigger, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		logger.Debug("Sweep trigger fired", "schedule", schedule)
		if err := trigger.Trigger(context.Background()); err != nil {
			logger.Error("Sweep trigger failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return c, nil
}
