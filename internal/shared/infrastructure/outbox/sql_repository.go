package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

const outboxColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository for both PostgreSQL and SQLite.
type SQLRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLRepository creates an outbox repository over conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Save stores a new outbox message.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	query := r.driver.Rebind(`INSERT INTO outbox
		(event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := r.exec(ctx).QueryRow(ctx, query,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		r.driver.TimeArg(msg.CreatedAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// SaveBatch stores msgs in order. Callers wanting atomicity run it inside a unit of work.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished returns messages that are neither published nor dead-lettered
// and whose retry time, if any, has passed.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int, now time.Time) ([]*Message, error) {
	query := r.driver.Rebind(`SELECT ` + outboxColumns + ` FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`)
	rows, err := r.exec(ctx).Query(ctx, query, r.driver.TimeArg(now), limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	query := r.driver.Rebind(`UPDATE outbox SET published_at = ? WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(at), id)
	return err
}

// MarkFailed records a publish failure.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := r.driver.Rebind(`UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, errMsg, r.driver.TimeArg(nextRetryAt), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	query := r.driver.Rebind(`UPDATE outbox
		SET retry_count = retry_count + 1, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(at), reason, id)
	return err
}

// DeleteOld removes published messages older than before.
func (r *SQLRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	query := r.driver.Rebind(`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`)
	res, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(rows database.Rows) (*Message, error) {
	var (
		msg                                     Message
		eventID, aggregateID, payload           string
		metadata, lastError, deadReason         sql.NullString
		createdAt, publishedAt, nextRetry, dead database.Timestamp
	)
	if err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetry, &msg.RetryCount,
		&lastError, &dead, &deadReason,
	); err != nil {
		return nil, fmt.Errorf("scan outbox message: %w", err)
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("parse aggregate id: %w", err)
	}
	msg.Payload = json.RawMessage(payload)
	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	msg.CreatedAt = createdAt.Time
	msg.PublishedAt = publishedAt.Ptr()
	msg.NextRetryAt = nextRetry.Ptr()
	msg.DeadLetteredAt = dead.Ptr()
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}
