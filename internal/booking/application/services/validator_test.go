package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
	shareddomain "github.com/felixgeelhaar/bookwell/internal/shared/domain"
	"github.com/felixgeelhaar/bookwell/pkg/observability"
)

// Monday 2025-06-09, 10:00 UTC.
var now = time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

func testCalendar(t *testing.T, mutate ...func(*domain.CalendarConfig)) *domain.BusinessCalendar {
	t.Helper()
	cfg := domain.CalendarConfig{
		OpenHour:       13,
		CloseHour:      22,
		StepMinutes:    30,
		ClosedWeekdays: []int{4},
		Location:       time.UTC,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	cal, err := domain.NewBusinessCalendar(cfg)
	require.NoError(t, err)
	return cal
}

func activeService(id int64) *domain.Service {
	return domain.RehydrateService(id, "Full detail", 60, 25000, true, false, now, now)
}

func proposal(date string, slot string) Proposal {
	s, err := domain.ParseSlot(slot)
	if err != nil {
		panic(err)
	}
	return Proposal{ServiceID: 1, Date: domain.MustParseDate(date), Time: s}
}

type validatorFixture struct {
	services *mockServiceRepo
	bookings *mockBookingRepo
	clock    *shareddomain.FixedClock
	metrics  *observability.InMemoryMetrics
	v        *Validator
}

func newValidatorFixture(t *testing.T, cal *domain.BusinessCalendar) *validatorFixture {
	f := &validatorFixture{
		services: new(mockServiceRepo),
		bookings: new(mockBookingRepo),
		clock:    shareddomain.NewFixedClock(now),
		metrics:  observability.NewInMemoryMetrics(),
	}
	if cal == nil {
		cal = testCalendar(t)
	}
	f.v = NewValidator(f.services, f.bookings, cal, f.clock, f.metrics)
	return f
}

func TestValidator_Accepts(t *testing.T) {
	f := newValidatorFixture(t, nil)
	ctx := context.Background()
	at := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)
	f.bookings.On("FindActiveAt", mock.Anything, int64(1), at).Return(nil, nil)

	c, err := f.v.Validate(ctx, proposal("2025-06-10", "14:00"))

	require.NoError(t, err)
	assert.Equal(t, at, c.At)
	assert.Equal(t, int64(1), c.Service.ID())
	assert.Equal(t, domain.Slot{Hour: 14}, c.Time)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricValidations, observability.T("outcome", "ok")))
}

func TestValidator_LastSlot(t *testing.T) {
	f := newValidatorFixture(t, nil)
	ctx := context.Background()
	f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)
	f.bookings.On("FindActiveAt", mock.Anything, int64(1), mock.Anything).Return(nil, nil)

	_, err := f.v.Validate(ctx, proposal("2025-06-10", "21:30"))
	require.NoError(t, err)

	_, err = f.v.Validate(ctx, proposal("2025-06-10", "21:31"))
	assert.ErrorIs(t, err, domain.ErrOutsideBusinessHours)
}

func TestValidator_Rejections(t *testing.T) {
	taken := domain.RehydrateBooking(uuid.New(), 1, uuid.New(), time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
		domain.StatusApproved, "", nil, now, now)

	tests := []struct {
		name     string
		calendar func(*domain.CalendarConfig)
		service  *domain.Service
		findErr  error
		occupant *domain.Booking
		proposal Proposal
		want     error
		kind     domain.Kind
	}{
		{
			name:     "unknown service",
			findErr:  domain.ErrUnknownOrInactiveService,
			proposal: proposal("2025-06-10", "14:00"),
			want:     domain.ErrUnknownOrInactiveService,
		},
		{
			name:     "inactive service",
			service:  domain.RehydrateService(1, "Old", 60, 0, false, false, now, now),
			proposal: proposal("2025-06-10", "14:00"),
			want:     domain.ErrUnknownOrInactiveService,
		},
		{
			name:     "service lookup failure",
			findErr:  errors.New("connection refused"),
			proposal: proposal("2025-06-10", "14:00"),
			want:     domain.ErrPersistenceUnavailable,
		},
		{
			name:     "default closed friday",
			proposal: proposal("2025-06-13", "14:00"),
			want:     domain.ErrClosedDay,
		},
		{
			name:     "extra closed weekday",
			calendar: func(c *domain.CalendarConfig) { c.ClosedWeekdays = []int{4, 1} },
			proposal: proposal("2025-06-10", "14:00"),
			want:     domain.ErrClosedDay,
		},
		{
			name:     "closed date",
			calendar: func(c *domain.CalendarConfig) { c.ClosedDates = []string{"2025-06-10"} },
			proposal: proposal("2025-06-10", "14:00"),
			want:     domain.ErrClosedDay,
		},
		{
			name:     "closed day wins over past",
			proposal: proposal("2025-06-06", "14:00"),
			want:     domain.ErrClosedDay,
		},
		{
			name:     "past",
			proposal: proposal("2025-06-09", "09:30"),
			want:     domain.ErrPastAppointment,
		},
		{
			name:     "past wins over outside hours",
			proposal: proposal("2025-06-08", "23:00"),
			want:     domain.ErrPastAppointment,
		},
		{
			name:     "before opening",
			proposal: proposal("2025-06-10", "12:30"),
			want:     domain.ErrOutsideBusinessHours,
		},
		{
			name:     "off grid",
			proposal: proposal("2025-06-10", "14:15"),
			want:     domain.ErrOutsideBusinessHours,
		},
		{
			name:     "slot taken",
			occupant: taken,
			proposal: proposal("2025-06-10", "15:00"),
			want:     domain.ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutate []func(*domain.CalendarConfig)
			if tt.calendar != nil {
				mutate = append(mutate, tt.calendar)
			}
			f := newValidatorFixture(t, testCalendar(t, mutate...))

			service := tt.service
			if service == nil && tt.findErr == nil {
				service = activeService(1)
			}
			if tt.findErr != nil {
				f.services.On("FindByID", mock.Anything, int64(1)).Return(nil, tt.findErr)
			} else {
				f.services.On("FindByID", mock.Anything, int64(1)).Return(service, nil)
			}
			if tt.occupant != nil {
				f.bookings.On("FindActiveAt", mock.Anything, int64(1), tt.occupant.AppointmentAt()).Return(tt.occupant, nil)
			}

			c, err := f.v.Validate(context.Background(), tt.proposal)

			assert.Nil(t, c)
			require.ErrorIs(t, err, tt.want)
			if tt.occupant == nil {
				f.bookings.AssertNotCalled(t, "FindActiveAt", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestValidator_ClosedDayReason(t *testing.T) {
	f := newValidatorFixture(t, testCalendar(t))
	f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)

	_, err := f.v.Validate(context.Background(), proposal("2025-06-13", "14:00"))

	var closed *domain.ClosedDayError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, domain.ClosedReasonWeekday, closed.Reason)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricValidations, observability.T("outcome", "closed_day")))
}

func TestValidator_OutOfRangeSlot(t *testing.T) {
	tests := []struct {
		name string
		slot domain.Slot
	}{
		// Thursday 38:00 would compose to Friday 14:00, the closed Friday.
		{"hour rolls into next day", domain.Slot{Hour: 38}},
		{"negative hour", domain.Slot{Hour: -10}},
		{"minute overflow", domain.Slot{Hour: 13, Minute: 90}},
		{"negative minute", domain.Slot{Hour: 14, Minute: -30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newValidatorFixture(t, nil)
			f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)

			c, err := f.v.Validate(context.Background(), Proposal{
				ServiceID: 1,
				Date:      domain.MustParseDate("2025-06-12"),
				Time:      tt.slot,
			})
			require.ErrorIs(t, err, domain.ErrOutsideBusinessHours)
			assert.Nil(t, c)
			f.bookings.AssertNotCalled(t, "FindActiveAt", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestValidator_NowIsNotPast(t *testing.T) {
	f := newValidatorFixture(t, nil)
	at := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	f.clock.Set(at)
	f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)
	f.bookings.On("FindActiveAt", mock.Anything, int64(1), at).Return(nil, nil)

	_, err := f.v.Validate(context.Background(), proposal("2025-06-10", "14:00"))
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.v.Validate(context.Background(), proposal("2025-06-10", "14:00"))
	assert.ErrorIs(t, err, domain.ErrPastAppointment)
}

func TestValidator_OccupancyFailure(t *testing.T) {
	f := newValidatorFixture(t, nil)
	f.services.On("FindByID", mock.Anything, int64(1)).Return(activeService(1), nil)
	f.bookings.On("FindActiveAt", mock.Anything, int64(1), mock.Anything).Return(nil, errors.New("database is locked"))

	_, err := f.v.Validate(context.Background(), proposal("2025-06-10", "14:00"))

	assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
	assert.Equal(t, domain.KindPersistenceUnavailable, domain.KindOf(err))
}
