package queries

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// ListOwnerBookingsHandler lists a user's own bookings, newest first.
type ListOwnerBookingsHandler struct {
	bookings domain.BookingRepository
	services domain.ServiceRepository
}

// NewListOwnerBookingsHandler creates a ListOwnerBookingsHandler.
func NewListOwnerBookingsHandler(bookings domain.BookingRepository, services domain.ServiceRepository) *ListOwnerBookingsHandler {
	return &ListOwnerBookingsHandler{bookings: bookings, services: services}
}

// Handle returns the actor's bookings.
func (h *ListOwnerBookingsHandler) Handle(ctx context.Context, actor domain.Actor) ([]BookingDTO, error) {
	if actor.ID == uuid.Nil {
		return nil, domain.ErrForbidden
	}
	bookings, err := h.bookings.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}
	names, err := serviceNames(ctx, h.services)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings, names), nil
}

// BookingsByStatus is the admin dashboard: one bucket per status, soonest first.
type BookingsByStatus struct {
	Pending   []BookingDTO
	Approved  []BookingDTO
	Cancelled []BookingDTO
}

// ListBookingsByStatusHandler builds the admin dashboard.
type ListBookingsByStatusHandler struct {
	bookings domain.BookingRepository
	services domain.ServiceRepository
}

// NewListBookingsByStatusHandler creates a ListBookingsByStatusHandler.
func NewListBookingsByStatusHandler(bookings domain.BookingRepository, services domain.ServiceRepository) *ListBookingsByStatusHandler {
	return &ListBookingsByStatusHandler{bookings: bookings, services: services}
}

// Handle requires an admin actor.
func (h *ListBookingsByStatusHandler) Handle(ctx context.Context, actor domain.Actor) (*BookingsByStatus, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	names, err := serviceNames(ctx, h.services)
	if err != nil {
		return nil, err
	}

	buckets := make(map[domain.Status][]BookingDTO, len(domain.Statuses))
	for _, status := range domain.Statuses {
		bookings, err := h.bookings.ListByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
		}
		buckets[status] = toBookingDTOs(bookings, names)
	}
	return &BookingsByStatus{
		Pending:   buckets[domain.StatusPending],
		Approved:  buckets[domain.StatusApproved],
		Cancelled: buckets[domain.StatusCancelled],
	}, nil
}

func serviceNames(ctx context.Context, services domain.ServiceRepository) (map[int64]string, error) {
	all, err := services.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}
	names := make(map[int64]string, len(all))
	for _, s := range all {
		names[s.ID()] = s.Name()
	}
	return names, nil
}

func toBookingDTOs(bookings []*domain.Booking, names map[int64]string) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = ToBookingDTO(b, names)
	}
	return dtos
}
