package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/bookwell/internal/shared/application"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/outbox"
)

// DeleteBookingCommand removes a booking.
type DeleteBookingCommand struct {
	Actor     domain.Actor
	BookingID uuid.UUID
}

// DeleteBookingHandler deletes bookings. Owners may withdraw their own
// pending bookings, which also removes the attached vehicle record; admins
// may delete any booking and leave the vehicle in place.
type DeleteBookingHandler struct {
	bookings   domain.BookingRepository
	vehicles   domain.VehicleRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      shareddomain.Clock
}

// NewDeleteBookingHandler creates a DeleteBookingHandler.
func NewDeleteBookingHandler(
	bookings domain.BookingRepository,
	vehicles domain.VehicleRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	clock shareddomain.Clock,
) *DeleteBookingHandler {
	return &DeleteBookingHandler{
		bookings:   bookings,
		vehicles:   vehicles,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the DeleteBookingCommand.
func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		b, err := h.bookings.FindByID(txCtx, cmd.BookingID)
		if err != nil {
			return persistence("load booking", err)
		}
		if err := b.CheckDelete(cmd.Actor); err != nil {
			return err
		}

		b.MarkDeleted(cmd.Actor, h.clock.Now())
		if err := h.bookings.Delete(txCtx, b.ID()); err != nil {
			return persistence("delete booking", err)
		}

		if !cmd.Actor.IsAdmin() && b.VehicleID() != nil {
			if err := h.vehicles.Delete(txCtx, *b.VehicleID()); err != nil {
				return persistence("delete vehicle", err)
			}
		}
		return saveEvents(txCtx, h.outboxRepo, b, cmd.Actor.ID)
	})
	if err != nil {
		return persistence("delete booking", err)
	}
	return nil
}
