package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// Proposal is an appointment a caller asks for.
type Proposal struct {
	ServiceID int64
	Date      domain.Date
	Time      domain.Slot
}

// Candidate is a proposal that passed validation and is ready to commit.
type Candidate struct {
	Service *domain.Service
	Date    domain.Date
	Time    domain.Slot
	// At is the composed instant, normalised for storage.
	At time.Time
}

// Validator checks proposals against the calendar and current occupancy.
// It has no side effects and takes no locks.
type Validator struct {
	services domain.ServiceRepository
	bookings domain.BookingRepository
	calendar *domain.BusinessCalendar
	clock    shareddomain.Clock
	metrics  observability.Metrics
}

// NewValidator creates a Validator.
func NewValidator(
	services domain.ServiceRepository,
	bookings domain.BookingRepository,
	calendar *domain.BusinessCalendar,
	clock shareddomain.Clock,
	metrics observability.Metrics,
) *Validator {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Validator{
		services: services,
		bookings: bookings,
		calendar: calendar,
		clock:    clock,
		metrics:  metrics,
	}
}

// Validate runs the checks in order and returns the first failure:
// unknown or inactive service, closed day, past instant, outside business
// hours or off the slot grid, and finally the advisory occupancy check.
func (v *Validator) Validate(ctx context.Context, p Proposal) (*Candidate, error) {
	c, err := v.validate(ctx, p)
	v.metrics.Counter(observability.MetricValidations, 1, observability.T(observability.OutcomeKey, outcome(err)))
	return c, err
}

func (v *Validator) validate(ctx context.Context, p Proposal) (*Candidate, error) {
	svc, err := v.services.FindByID(ctx, p.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOrInactiveService) {
			return nil, err
		}
		return nil, unavailable("load service", err)
	}
	if !svc.IsActive() {
		return nil, fmt.Errorf("service %d: %w", p.ServiceID, domain.ErrUnknownOrInactiveService)
	}

	if reason, closed := v.calendar.ClosedReason(p.Date); closed {
		return nil, &domain.ClosedDayError{Date: p.Date, Reason: reason}
	}

	if !p.Time.Valid() {
		return nil, fmt.Errorf("%s: %w", p.Time, domain.ErrOutsideBusinessHours)
	}

	at := v.calendar.Compose(p.Date, p.Time)
	if at.Before(v.clock.Now()) {
		return nil, fmt.Errorf("%s %s: %w", p.Date, p.Time, domain.ErrPastAppointment)
	}

	if !v.calendar.IsBookableInstant(at) {
		return nil, fmt.Errorf("%s: %w", p.Time, domain.ErrOutsideBusinessHours)
	}

	at = domain.NormalizeInstant(at)
	existing, err := v.bookings.FindActiveAt(ctx, p.ServiceID, at)
	if err != nil {
		return nil, unavailable("check occupancy", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s %s: %w", p.Date, p.Time, domain.ErrSlotTaken)
	}

	return &Candidate{Service: svc, Date: p.Date, Time: p.Time, At: at}, nil
}

// unavailable marks an infrastructure failure. Errors already carrying a
// domain kind pass through.
func unavailable(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceUnavailable, op, err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
