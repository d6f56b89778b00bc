package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
)

// AggregateType names bookings in events.
const AggregateType = "Booking"

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in dashboard order.
var Statuses = []Status{StatusPending, StatusApproved, StatusCancelled}

// ParseStatus validates s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// IsActive reports whether the status occupies its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) String() string { return string(s) }

// Action is an admin status command.
type Action string

const (
	ActionApprove Action = "approve"
	ActionCancel  Action = "cancel"
	ActionReset   Action = "reset"
)

// ParseAction validates s.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApprove, ActionCancel, ActionReset:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
}

type transition struct {
	from []Status
	to   Status
}

var transitions = map[Action]transition{
	ActionApprove: {from: []Status{StatusPending}, to: StatusApproved},
	ActionCancel:  {from: []Status{StatusPending, StatusApproved}, to: StatusCancelled},
	ActionReset:   {from: []Status{StatusApproved, StatusCancelled}, to: StatusPending},
}

// Target returns the status action a moves a booking to from status from.
func (a Action) Target(from Status) (Status, error) {
	t, ok := transitions[a]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, a)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, a, from)
}

// Booking is a reservation of one service at one instant.
type Booking struct {
	shareddomain.BaseAggregateRoot
	serviceID     int64
	ownerID       uuid.UUID
	appointmentAt time.Time
	status        Status
	notes         string
	vehicleID     *uuid.UUID
}

// NewBooking creates a pending booking. The instant is stored in UTC at
// second precision; it is the conflict key together with the service.
func NewBooking(serviceID int64, ownerID uuid.UUID, at time.Time, notes string, vehicleID *uuid.UUID, now time.Time) (*Booking, error) {
	if serviceID <= 0 {
		return nil, fmt.Errorf("%w: service id is required", ErrInvalidInput)
	}
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: appointment time is required", ErrInvalidInput)
	}

	b := &Booking{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRoot(shareddomain.NewBaseEntity(now)),
		serviceID:         serviceID,
		ownerID:           ownerID,
		appointmentAt:     NormalizeInstant(at),
		status:            StatusPending,
		notes:             notes,
		vehicleID:         vehicleID,
	}
	b.AddDomainEvent(NewBookingRequested(b, now))
	return b, nil
}

// RehydrateBooking recreates a booking from persistence.
func RehydrateBooking(
	id uuid.UUID,
	serviceID int64,
	ownerID uuid.UUID,
	at time.Time,
	status Status,
	notes string,
	vehicleID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRoot(shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		serviceID:         serviceID,
		ownerID:           ownerID,
		appointmentAt:     NormalizeInstant(at),
		status:            status,
		notes:             notes,
		vehicleID:         vehicleID,
	}
}

// NormalizeInstant is the storage form of an appointment instant.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (b *Booking) ServiceID() int64         { return b.serviceID }
func (b *Booking) OwnerID() uuid.UUID       { return b.ownerID }
func (b *Booking) AppointmentAt() time.Time { return b.appointmentAt }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) Notes() string            { return b.notes }
func (b *Booking) VehicleID() *uuid.UUID    { return b.vehicleID }

// IsActive reports whether the booking occupies its slot.
func (b *Booking) IsActive() bool { return b.status.IsActive() }

// Apply performs an admin status action.
func (b *Booking) Apply(action Action, now time.Time) error {
	to, err := action.Target(b.status)
	if err != nil {
		return err
	}
	from := b.status
	b.status = to
	b.Touch(now)
	b.AddDomainEvent(NewBookingStatusChanged(b, action, from, now))
	return nil
}

// Approve moves a pending booking to approved.
func (b *Booking) Approve(now time.Time) error { return b.Apply(ActionApprove, now) }

// Cancel frees the slot of a pending or approved booking.
func (b *Booking) Cancel(now time.Time) error { return b.Apply(ActionCancel, now) }

// Reset returns an approved or cancelled booking to pending.
func (b *Booking) Reset(now time.Time) error { return b.Apply(ActionReset, now) }

// CheckDelete decides whether actor may delete the booking. Admins may delete
// in any status; owners only while pending.
func (b *Booking) CheckDelete(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID != b.ownerID {
		return ErrForbidden
	}
	if b.status != StatusPending {
		return fmt.Errorf("%w: only pending bookings can be withdrawn, this one is %s", ErrInvalidTransition, b.status)
	}
	return nil
}

// MarkDeleted records the deletion event after CheckDelete has passed.
func (b *Booking) MarkDeleted(actor Actor, now time.Time) {
	b.AddDomainEvent(NewBookingDeleted(b, actor, now))
}
