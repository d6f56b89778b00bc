package domain

import (
	"time"

	"github.com/google/uuid"

	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
)

// Routing keys for booking events.
const (
	RoutingKeyBookingRequested     = "booking.requested"
	RoutingKeyBookingStatusChanged = "booking.status_changed"
	RoutingKeyBookingDeleted       = "booking.deleted"
)

// BookingRequested is raised when a booking is committed.
type BookingRequested struct {
	shareddomain.BaseEvent
	BookingID     uuid.UUID  `json:"booking_id"`
	ServiceID     int64      `json:"service_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	AppointmentAt time.Time  `json:"appointment_at"`
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
}

func NewBookingRequested(b *Booking, now time.Time) *BookingRequested {
	return &BookingRequested{
		BaseEvent:     shareddomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingRequested, now),
		BookingID:     b.ID(),
		ServiceID:     b.serviceID,
		OwnerID:       b.ownerID,
		AppointmentAt: b.appointmentAt,
		VehicleID:     b.vehicleID,
	}
}

// BookingStatusChanged is raised by approve, cancel and reset.
type BookingStatusChanged struct {
	shareddomain.BaseEvent
	BookingID     uuid.UUID `json:"booking_id"`
	ServiceID     int64     `json:"service_id"`
	AppointmentAt time.Time `json:"appointment_at"`
	Action        Action    `json:"action"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
}

func NewBookingStatusChanged(b *Booking, action Action, from Status, now time.Time) *BookingStatusChanged {
	return &BookingStatusChanged{
		BaseEvent:     shareddomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingStatusChanged, now),
		BookingID:     b.ID(),
		ServiceID:     b.serviceID,
		AppointmentAt: b.appointmentAt,
		Action:        action,
		From:          from,
		To:            b.status,
	}
}

// BookingDeleted is raised when a booking row is removed.
type BookingDeleted struct {
	shareddomain.BaseEvent
	BookingID     uuid.UUID `json:"booking_id"`
	ServiceID     int64     `json:"service_id"`
	AppointmentAt time.Time `json:"appointment_at"`
	Status        Status    `json:"status"`
	DeletedBy     uuid.UUID `json:"deleted_by"`
	ByAdmin       bool      `json:"by_admin"`
}

func NewBookingDeleted(b *Booking, actor Actor, now time.Time) *BookingDeleted {
	return &BookingDeleted{
		BaseEvent:     shareddomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingDeleted, now),
		BookingID:     b.ID(),
		ServiceID:     b.serviceID,
		AppointmentAt: b.appointmentAt,
		Status:        b.status,
		DeletedBy:     actor.ID,
		ByAdmin:       actor.IsAdmin(),
	}
}
