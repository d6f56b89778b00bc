package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnyService matches every service in occupancy queries.
const AnyService int64 = 0

// BookingRepository persists bookings. Implementations join the unit of work
// carried by ctx.
type BookingRepository interface {
	// FindActive returns pending and approved bookings with from <= at < to,
	// ascending by instant. serviceID AnyService matches every service.
	FindActive(ctx context.Context, serviceID int64, from, to time.Time) ([]*Booking, error)

	// FindActiveAt returns the active booking holding (serviceID, at), or nil.
	FindActiveAt(ctx context.Context, serviceID int64, at time.Time) (*Booking, error)

	// Insert stores a new booking. A uniqueness failure on the active slot
	// is reported as database.ErrConstraintViolation.
	Insert(ctx context.Context, b *Booking) error

	// UpdateStatus persists the booking's current status.
	UpdateStatus(ctx context.Context, b *Booking) error

	// Delete removes the booking row.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID returns ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByOwner returns the owner's bookings, newest appointment first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Booking, error)

	// ListByStatus returns bookings in status, ascending by instant.
	ListByStatus(ctx context.Context, status Status) ([]*Booking, error)

	// CountByService counts bookings of any status for a service.
	CountByService(ctx context.Context, serviceID int64) (int, error)
}

// ServiceRepository persists the catalog.
type ServiceRepository interface {
	// FindByID returns ErrUnknownOrInactiveService when absent.
	FindByID(ctx context.Context, id int64) (*Service, error)
	List(ctx context.Context, activeOnly bool) ([]*Service, error)
	// Insert stores s and assigns its ID.
	Insert(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id int64) error
}

// VehicleRepository persists vehicle sub-records.
type VehicleRepository interface {
	Insert(ctx context.Context, v *Vehicle) error
	// FindByID returns ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
