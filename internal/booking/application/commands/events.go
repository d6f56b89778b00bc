package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

// saveEvents writes the booking's pending events to the outbox and clears
// them. It must run inside the unit of work that persisted the booking.
func saveEvents(ctx context.Context, repo outbox.Repository, b *domain.Booking, actorID uuid.UUID) error {
	events := b.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(ctx, actorID))

	msgs, err := outbox.FromEvents(events)
	if err != nil {
		return err
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return persistence("write outbox", err)
	}
	b.ClearDomainEvents()
	return nil
}

// persistence marks an infrastructure failure; errors that already carry a
// domain kind pass through.
func persistence(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceUnavailable, op, err)
}
