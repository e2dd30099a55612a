// Package logging publishes outbox entries to a structured logger. It stands
// in for a broker when none is configured so the outbox still drains.
package logging

import (
	"context"
	"log/slog"

	"registrar/pkg/platform/outbox"
)

type Publisher struct {
	logger *slog.Logger
	level  slog.Level
}

func NewPublisher(logger *slog.Logger, level slog.Level) *Publisher {
	return &Publisher{logger: logger, level: level}
}

func (p *Publisher) Publish(ctx context.Context, entries []outbox.Entry) error {
	for _, e := range entries {
		p.logger.Log(ctx, p.level, "outbox event",
			"event_id", e.ID.String(),
			"event_type", e.EventType,
			"aggregate_type", e.AggregateType,
			"aggregate_id", e.AggregateID,
			"payload", string(e.Payload),
		)
	}
	return nil
}
