package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/shared/domain"
)

// Message is a domain event persisted alongside the state change that raised it.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// envelope is the published body. Consumers dedupe on EventID.
type envelope struct {
	EventID     uuid.UUID       `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// NewMessage creates an outbox message from a domain event.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(envelope{
		EventID:     event.EventID(),
		EventType:   event.RoutingKey(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Data:        data,
	})
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// FromEvents converts a batch of domain events into outbox messages.
func FromEvents(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// CorrelationID returns the correlation ID recorded in the metadata, if any.
func (m *Message) CorrelationID() string {
	if len(m.Metadata) == 0 {
		return ""
	}
	var md domain.EventMetadata
	if err := json.Unmarshal(m.Metadata, &md); err != nil || md.CorrelationID == uuid.Nil {
		return ""
	}
	return md.CorrelationID.String()
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
