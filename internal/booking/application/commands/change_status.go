package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// ChangeStatusCommand applies an admin action to a booking.
type ChangeStatusCommand struct {
	Actor     domain.Actor
	BookingID uuid.UUID
	Action    domain.Action
}

// ChangeStatusResult reports the transition that happened.
type ChangeStatusResult struct {
	BookingID uuid.UUID
	From      domain.Status
	To        domain.Status
}

// ChangeStatusHandler approves, cancels and resets bookings.
type ChangeStatusHandler struct {
	bookings   domain.BookingRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      shareddomain.Clock
	metrics    observability.Metrics
}

// NewChangeStatusHandler creates a ChangeStatusHandler.
func NewChangeStatusHandler(
	bookings domain.BookingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	clock shareddomain.Clock,
	metrics observability.Metrics,
) *ChangeStatusHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ChangeStatusHandler{
		bookings:   bookings,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
		metrics:    metrics,
	}
}

// Handle executes the ChangeStatusCommand. Resetting a booking whose slot
// has since been taken by another active booking fails with domain.ErrConflict.
func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*ChangeStatusResult, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var result *ChangeStatusResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		b, err := h.bookings.FindByID(txCtx, cmd.BookingID)
		if err != nil {
			return persistence("load booking", err)
		}

		from := b.Status()
		if err := b.Apply(cmd.Action, h.clock.Now()); err != nil {
			return err
		}

		if err := h.bookings.UpdateStatus(txCtx, b); err != nil {
			if errors.Is(err, database.ErrConstraintViolation) {
				return fmt.Errorf("%w: slot is held by another booking", domain.ErrConflict)
			}
			return persistence("update status", err)
		}
		if err := saveEvents(txCtx, h.outboxRepo, b, cmd.Actor.ID); err != nil {
			return err
		}

		result = &ChangeStatusResult{BookingID: b.ID(), From: from, To: b.Status()}
		return nil
	})

	h.metrics.Counter(observability.MetricStatusChanges, 1,
		observability.T("action", string(cmd.Action)),
		observability.T(observability.OutcomeKey, outcome(err)),
	)
	if err != nil {
		return nil, persistence("change status", err)
	}
	return result, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
