// Package eventbus publishes outbox messages to the message broker.
package eventbus

import (
	"context"
	"log/slog"
)

// Message is one event ready for the broker.
type Message struct {
	// ID is the event ID; brokers expose it as the message ID so consumers can dedupe.
	ID            string
	RoutingKey    string
	CorrelationID string
	Payload       []byte
}

// Publisher sends messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NoopPublisher logs messages and drops them. Used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.DebugContext(ctx, "noop publish",
		"routing_key", msg.RoutingKey,
		"event_id", msg.ID,
		"size", len(msg.Payload),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
