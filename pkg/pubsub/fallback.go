package pubsub

import (
	"context"
	"log/slog"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
)

// FallbackPublisher logs and drops every envelope. It stands in when no
// broker is configured.
type FallbackPublisher struct {
	log *slog.Logger
}

func (p *FallbackPublisher) Publish(_ context.Context, key string, msg common.Envelope) error {
	p.log.Warn("FallbackPublisher: skipped publish", slog.String("key", key), slog.String("id", msg.Meta.ID))
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

func NewFallback(logger *slog.Logger) *FallbackPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackPublisher{log: logger}
}
