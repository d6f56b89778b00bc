package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata for domain events.
func NewEventMetadata(actorID uuid.UUID) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		ActorID:       actorID,
	}
}

// EventMetadataFromContext reuses the request's correlation ID when it is a
// UUID, so events can be traced back to the request that raised them.
func EventMetadataFromContext(ctx context.Context, actorID uuid.UUID) domain.EventMetadata {
	md := NewEventMetadata(actorID)
	if id, err := uuid.Parse(observability.CorrelationIDFromContext(ctx)); err == nil {
		md.CorrelationID = id
	}
	return md
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
