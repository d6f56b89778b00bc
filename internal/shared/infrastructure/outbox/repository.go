package outbox

import (
	"context"
	"time"
)

// Repository defines outbox persistence.
type Repository interface {
	// Save stores a new outbox message. Inside a unit of work it joins the transaction.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores multiple outbox messages.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages due for publishing, oldest first.
	GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*Message, error)

	// MarkPublished marks a message as successfully published.
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a publish failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// MarkDead moves a message out of the publishing queue.
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteOld removes published messages older than the cutoff.
	DeleteOld(ctx context.Context, before time.Time) (int64, error)
}
