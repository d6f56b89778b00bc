package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// FreeSlotsQuery asks for the open slots of a service on a day.
type FreeSlotsQuery struct {
	ServiceID int64
	Date      domain.Date
}

// FreeSlotsResult lists free slots in ascending order. Closed days report
// their reason and no slots.
type FreeSlotsResult struct {
	ServiceID    int64
	Date         domain.Date
	Slots        []domain.Slot
	Closed       bool
	ClosedReason domain.ClosedReason
}

// FreeSlotsHandler computes availability from the calendar and active
// bookings. It reads fresh on every call and takes no locks, so the answer
// may be stale by the time a booking is committed. Only active services
// have availability.
type FreeSlotsHandler struct {
	services domain.ServiceRepository
	bookings domain.BookingRepository
	calendar *domain.BusinessCalendar
	metrics  observability.Metrics
}

// NewFreeSlotsHandler creates a FreeSlotsHandler.
func NewFreeSlotsHandler(
	services domain.ServiceRepository,
	bookings domain.BookingRepository,
	calendar *domain.BusinessCalendar,
	metrics observability.Metrics,
) *FreeSlotsHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &FreeSlotsHandler{services: services, bookings: bookings, calendar: calendar, metrics: metrics}
}

// Handle executes the FreeSlotsQuery.
func (h *FreeSlotsHandler) Handle(ctx context.Context, query FreeSlotsQuery) (*FreeSlotsResult, error) {
	svc, err := h.services.FindByID(ctx, query.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOrInactiveService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load service: %w", domain.ErrPersistenceUnavailable, err)
	}
	if !svc.IsActive() {
		return nil, fmt.Errorf("service %d: %w", query.ServiceID, domain.ErrUnknownOrInactiveService)
	}

	result := &FreeSlotsResult{ServiceID: query.ServiceID, Date: query.Date, Slots: []domain.Slot{}}

	if reason, closed := h.calendar.ClosedReason(query.Date); closed {
		result.Closed, result.ClosedReason = true, reason
		h.metrics.Counter(observability.MetricFreeSlotQueries, 1, observability.T("closed", "true"))
		return result, nil
	}

	occupied, err := occupiedSlots(ctx, h.bookings, h.calendar, query.ServiceID, query.Date)
	if err != nil {
		return nil, err
	}

	for _, s := range h.calendar.Slots() {
		if _, taken := occupied[s]; !taken {
			result.Slots = append(result.Slots, s)
		}
	}
	h.metrics.Counter(observability.MetricFreeSlotQueries, 1, observability.T("closed", "false"))
	return result, nil
}

func occupiedSlots(
	ctx context.Context,
	bookings domain.BookingRepository,
	calendar *domain.BusinessCalendar,
	serviceID int64,
	date domain.Date,
) (map[domain.Slot]struct{}, error) {
	start, end := calendar.DayBounds(date)
	active, err := bookings.FindActive(ctx, serviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: load occupancy: %w", domain.ErrPersistenceUnavailable, err)
	}
	occupied := make(map[domain.Slot]struct{}, len(active))
	for _, b := range active {
		occupied[calendar.LocalSlot(b.AppointmentAt())] = struct{}{}
	}
	return occupied, nil
}
