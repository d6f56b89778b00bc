package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOrInactiveService = errors.New("service is unknown or inactive")
	ErrClosedDay                = errors.New("business is closed on that day")
	ErrPastAppointment          = errors.New("appointment is in the past")
	ErrOutsideBusinessHours     = errors.New("appointment is outside business hours")
	ErrSlotTaken                = errors.New("slot is already booked")
	ErrConflict                 = errors.New("slot was taken by a concurrent booking")
	ErrNotFound                 = errors.New("not found")
	ErrForbidden                = errors.New("not allowed")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrPersistenceUnavailable   = errors.New("persistence unavailable")
	ErrServiceInUse             = errors.New("service has bookings")
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidCalendar          = errors.New("invalid business calendar")
)

// ClosedDayError carries the reason a requested day is closed.
// errors.Is(err, ErrClosedDay) holds for it.
type ClosedDayError struct {
	Date   Date
	Reason ClosedReason
}

func (e *ClosedDayError) Error() string {
	switch e.Reason {
	case ClosedReasonWeekday:
		return fmt.Sprintf("%s falls on a closed weekday", e.Date)
	default:
		return fmt.Sprintf("%s is a closed date", e.Date)
	}
}

func (e *ClosedDayError) Is(target error) bool {
	return target == ErrClosedDay
}

// Kind classifies errors for callers that map outcomes onto a transport.
type Kind int

const (
	KindInternal Kind = iota
	KindUnknownOrInactiveService
	KindClosedDay
	KindPastAppointment
	KindOutsideBusinessHours
	KindSlotTaken
	KindConflict
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindPersistenceUnavailable
	KindServiceInUse
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindInternal:                 "internal",
	KindUnknownOrInactiveService: "unknown_or_inactive_service",
	KindClosedDay:                "closed_day",
	KindPastAppointment:          "past_appointment",
	KindOutsideBusinessHours:     "outside_business_hours",
	KindSlotTaken:                "slot_taken",
	KindConflict:                 "conflict",
	KindNotFound:                 "not_found",
	KindForbidden:                "forbidden",
	KindInvalidTransition:        "invalid_transition",
	KindPersistenceUnavailable:   "persistence_unavailable",
	KindServiceInUse:             "service_in_use",
	KindInvalidInput:             "invalid_input",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindInternal]
}

var kindSentinels = []struct {
	err  error
	kind Kind
}{
	{ErrConflict, KindConflict},
	{ErrSlotTaken, KindSlotTaken},
	{ErrUnknownOrInactiveService, KindUnknownOrInactiveService},
	{ErrClosedDay, KindClosedDay},
	{ErrPastAppointment, KindPastAppointment},
	{ErrOutsideBusinessHours, KindOutsideBusinessHours},
	{ErrNotFound, KindNotFound},
	{ErrForbidden, KindForbidden},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrServiceInUse, KindServiceInUse},
	{ErrInvalidInput, KindInvalidInput},
	{ErrPersistenceUnavailable, KindPersistenceUnavailable},
}

// KindOf returns the kind of the first sentinel err matches, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindInternal
}
