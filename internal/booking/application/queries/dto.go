package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// BookingDTO is a booking as shown to owners and admins.
type BookingDTO struct {
	ID            uuid.UUID
	ServiceID     int64
	ServiceName   string
	OwnerID       uuid.UUID
	AppointmentAt time.Time
	Status        domain.Status
	Notes         string
	VehicleID     *uuid.UUID
	CreatedAt     time.Time
}

// ServiceDTO is a catalog entry.
type ServiceDTO struct {
	ID                   int64
	Name                 string
	DurationMinutes      int
	PriceMinor           int64
	Active               bool
	InstallmentAvailable bool
}

// ToBookingDTO converts a booking; names maps service IDs to display names.
func ToBookingDTO(b *domain.Booking, names map[int64]string) BookingDTO {
	return BookingDTO{
		ID:            b.ID(),
		ServiceID:     b.ServiceID(),
		ServiceName:   names[b.ServiceID()],
		OwnerID:       b.OwnerID(),
		AppointmentAt: b.AppointmentAt(),
		Status:        b.Status(),
		Notes:         b.Notes(),
		VehicleID:     b.VehicleID(),
		CreatedAt:     b.CreatedAt(),
	}
}

// ToServiceDTO converts a catalog entry.
func ToServiceDTO(s *domain.Service) ServiceDTO {
	return ServiceDTO{
		ID:                   s.ID(),
		Name:                 s.Name(),
		DurationMinutes:      s.DurationMinutes(),
		PriceMinor:           s.PriceMinor(),
		Active:               s.IsActive(),
		InstallmentAvailable: s.InstallmentAvailable(),
	}
}
