package queries

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// BookedSlotsQuery asks which times are taken on a day. ServiceID
// domain.AnyService covers every service.
type BookedSlotsQuery struct {
	ServiceID int64
	Date      domain.Date
}

// BookedSlotsHandler lists occupied times of day.
type BookedSlotsHandler struct {
	bookings domain.BookingRepository
	calendar *domain.BusinessCalendar
}

// NewBookedSlotsHandler creates a BookedSlotsHandler.
func NewBookedSlotsHandler(bookings domain.BookingRepository, calendar *domain.BusinessCalendar) *BookedSlotsHandler {
	return &BookedSlotsHandler{bookings: bookings, calendar: calendar}
}

// Handle returns the distinct occupied slots in ascending order.
func (h *BookedSlotsHandler) Handle(ctx context.Context, query BookedSlotsQuery) ([]domain.Slot, error) {
	occupied, err := occupiedSlots(ctx, h.bookings, h.calendar, query.ServiceID, query.Date)
	if err != nil {
		return nil, err
	}
	slots := make([]domain.Slot, 0, len(occupied))
	for s := range occupied {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots, nil
}
