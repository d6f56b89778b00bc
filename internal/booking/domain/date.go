package domain

import (
	"fmt"
	"time"
)

// dateLayout is the wire form of a Date.
const dateLayout = "2006-01-02"

// Date is a calendar day with no time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the business weekday: 0 = Monday through 6 = Sunday.
func (d Date) Weekday() int {
	return (int(d.In(time.UTC).Weekday()) + 6) % 7
}

// Slot is a time of day on the booking grid.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSlot parses HH:MM.
func ParseSlot(s string) (Slot, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, s)
	}
	return Slot{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// SlotOf returns the time of day of t, ignoring seconds.
func SlotOf(t time.Time) Slot {
	return Slot{Hour: t.Hour(), Minute: t.Minute()}
}

// Valid reports whether s is a real time of day. Compose would otherwise
// roll an out-of-range hour or minute into a neighbouring day.
func (s Slot) Valid() bool {
	return s.Hour >= 0 && s.Hour < 24 && s.Minute >= 0 && s.Minute < 60
}

// String formats the slot as HH:MM.
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Before reports whether s is earlier in the day than o.
func (s Slot) Before(o Slot) bool {
	if s.Hour != o.Hour {
		return s.Hour < o.Hour
	}
	return s.Minute < o.Minute
}
