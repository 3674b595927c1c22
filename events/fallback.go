package events

import (
	"context"
	"log/slog"
)

// FallbackPublisher stands in when no broker is configured or reachable.
type FallbackPublisher struct {
	log *slog.Logger
}

func (p *FallbackPublisher) Publish(ctx context.Context, key string, msg Envelope) error {
	p.log.Debug("FallbackPublisher: skipped publish", slog.String("key", key), slog.String("id", msg.Meta.ID))
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

// NewFallback returns a publisher that only logs.
func NewFallback(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackPublisher{
		log: logger,
	}
}
