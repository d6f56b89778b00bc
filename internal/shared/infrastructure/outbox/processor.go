package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	// Retention is how long published messages are kept. Zero keeps them forever.
	Retention time.Duration
}

// DefaultProcessorConfig returns the defaults used by the worker.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Processor polls the outbox and publishes due messages.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	clock     domain.Clock
	metrics   observability.Metrics
	logger    *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// ProcessorOption customises a Processor.
type ProcessorOption func(*Processor)

// WithClock overrides the processor clock.
func WithClock(clock domain.Clock) ProcessorOption {
	return func(p *Processor) { p.clock = clock }
}

// WithMetrics records publish outcomes.
func WithMetrics(metrics observability.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = metrics }
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		clock:     domain.SystemClock{},
		metrics:   observability.NoopMetrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.wg.Add(1)
	go p.run(ctx, p.stopChan)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
}

// Stop signals the loop and waits for the current batch to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		case <-cleanup.C:
			if _, err := p.Cleanup(ctx); err != nil {
				p.logger.Error("failed to clean up outbox", "error", err)
			}
		}
	}
}

// ProcessOnce publishes a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	now := p.clock.Now()
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize, now)
	if err != nil {
		p.recordError(err, now)
		return err
	}
	p.recordProcessed(messages, now)

	for _, msg := range messages {
		if err := p.publish(ctx, msg); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID, p.clock.Now()); err != nil {
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordPublished()
		p.metrics.Counter(observability.MetricOutboxPublished, 1, observability.T("routing_key", msg.RoutingKey))
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	return p.publisher.Publish(ctx, eventbus.Message{
		ID:            msg.EventID.String(),
		RoutingKey:    msg.RoutingKey,
		CorrelationID: msg.CorrelationID(),
		Payload:       msg.Payload,
	})
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", msg.CorrelationID(),
		"retry_count", msg.RetryCount,
		"error", err,
	)

	now := p.clock.Now()
	if p.shouldDeadLetter(msg) {
		p.recordDead(err, now)
		p.metrics.Counter(observability.MetricOutboxDeadLetter, 1, observability.T("routing_key", msg.RoutingKey))
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error(), now); markErr != nil {
			p.logger.Error("failed to mark message as dead-lettered", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.recordFailed(err, now)
	p.metrics.Counter(observability.MetricOutboxFailed, 1, observability.T("routing_key", msg.RoutingKey))
	next := now.Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// Cleanup deletes published messages older than the retention window.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	if p.config.Retention <= 0 {
		return 0, nil
	}
	deleted, err := p.repo.DeleteOld(ctx, p.clock.Now().Add(-p.config.Retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("outbox cleanup", "deleted", deleted)
	}
	return deleted, nil
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

// retryBackoff doubles from RetryBackoffBase per attempt, capped at RetryBackoffMax.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	limit := p.config.RetryBackoffMax
	if limit <= 0 {
		limit = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}

	backoff := base
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	if backoff > limit {
		return limit
	}
	return backoff
}

// Stats are processor counters for health reporting.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
}

// GetStats returns a snapshot of the processor counters.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	s := p.stats
	s.IsRunning = running
	return s
}

func (p *Processor) recordPublished() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.PublishedCount++
}

func (p *Processor) recordFailed(err error, at time.Time) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.FailedCount++
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) recordDead(err error, at time.Time) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.DeadCount++
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) recordError(err error, at time.Time) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) recordProcessed(messages []*Message, at time.Time) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastProcessedAt = &at
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		return
	}
	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.LagSeconds = at.Sub(oldest).Seconds()
	p.metrics.Gauge(observability.MetricOutboxLag, p.stats.LagSeconds)
}
