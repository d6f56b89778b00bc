package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/application/services"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// RequestBookingCommand is a customer's attempt to book a slot.
type RequestBookingCommand struct {
	Actor     domain.Actor
	ServiceID int64
	Date      domain.Date
	Time      domain.Slot
	Notes     string
	Vehicle   *domain.VehicleDetails
}

// RequestBookingResult describes the committed booking.
type RequestBookingResult struct {
	BookingID     uuid.UUID
	ServiceID     int64
	AppointmentAt time.Time
	Status        domain.Status
	VehicleID     *uuid.UUID
}

type proposalValidator interface {
	Validate(ctx context.Context, p services.Proposal) (*services.Candidate, error)
}

type bookingCommitter interface {
	Commit(ctx context.Context, req services.CommitRequest) (*domain.Booking, error)
}

// RequestBookingHandler validates a proposal and commits it.
type RequestBookingHandler struct {
	validator proposalValidator
	guard     bookingCommitter
}

// NewRequestBookingHandler creates a RequestBookingHandler.
func NewRequestBookingHandler(validator proposalValidator, guard bookingCommitter) *RequestBookingHandler {
	return &RequestBookingHandler{validator: validator, guard: guard}
}

// Handle executes the RequestBookingCommand. Validation failures and
// domain.ErrConflict are returned as is; the caller may re-query and retry.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	if cmd.Actor.ID == uuid.Nil {
		return nil, domain.ErrForbidden
	}

	candidate, err := h.validator.Validate(ctx, services.Proposal{
		ServiceID: cmd.ServiceID,
		Date:      cmd.Date,
		Time:      cmd.Time,
	})
	if err != nil {
		return nil, err
	}

	b, err := h.guard.Commit(ctx, services.CommitRequest{
		Candidate: candidate,
		OwnerID:   cmd.Actor.ID,
		Notes:     cmd.Notes,
		Vehicle:   cmd.Vehicle,
	})
	if err != nil {
		return nil, err
	}

	return &RequestBookingResult{
		BookingID:     b.ID(),
		ServiceID:     b.ServiceID(),
		AppointmentAt: b.AppointmentAt(),
		Status:        b.Status(),
		VehicleID:     b.VehicleID(),
	}, nil
}
