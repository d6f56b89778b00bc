package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

// NewEventPublisher connects to RabbitMQ. Without RABBITMQ_URL, or when the
// broker is unreachable in development, events are logged instead.
func (c *Container) NewEventPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" {
		c.Logger.Warn("RABBITMQ_URL not set, using noop publisher")
		return eventbus.NewNoopPublisher(c.Logger), nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsDevelopment() {
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			return eventbus.NewNoopPublisher(c.Logger), nil
		}
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return publisher, nil
}

// NewOutboxProcessor builds the processor that relays booking events.
func (c *Container) NewOutboxProcessor(publisher eventbus.Publisher, logger *slog.Logger) *outbox.Processor {
	cfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		cfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		cfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		cfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	cfg.Retention = time.Duration(c.Config.OutboxRetentionDays) * 24 * time.Hour

	return outbox.NewProcessor(c.OutboxRepo, publisher, cfg, logger,
		outbox.WithClock(c.Clock),
		outbox.WithMetrics(c.Metrics),
	)
}
