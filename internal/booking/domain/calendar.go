package domain

import (
	"fmt"
	"sort"
	"time"
)

// CalendarConfig describes the business's fixed opening hours and closures.
// Weekdays use 0 = Monday through 6 = Sunday.
type CalendarConfig struct {
	OpenHour    int
	CloseHour   int
	StepMinutes int
	// ClosedWeekdays are the weekly closures. pkg/config defaults them to
	// Friday.
	ClosedWeekdays []int
	// ClosedDates are YYYY-MM-DD dates.
	ClosedDates []string
	// Location is the business time zone. Nil means time.Local.
	Location *time.Location
}

// ClosedReason says why a day is closed. A day closed for several reasons
// reports the first in declaration order.
type ClosedReason int

const (
	ClosedReasonWeekday ClosedReason = iota + 1
	ClosedReasonDate
)

func (r ClosedReason) String() string {
	switch r {
	case ClosedReasonWeekday:
		return "closed_weekday"
	case ClosedReasonDate:
		return "closed_date"
	default:
		return "open"
	}
}

// BusinessCalendar answers which instants are bookable. It is immutable.
type BusinessCalendar struct {
	openHour       int
	closeHour      int
	step           int
	closedWeekdays [7]bool
	closedDates    map[Date]struct{}
	loc            *time.Location
}

// NewBusinessCalendar validates cfg and builds a calendar.
func NewBusinessCalendar(cfg CalendarConfig) (*BusinessCalendar, error) {
	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return nil, fmt.Errorf("%w: hours must satisfy 0 <= open (%d) < close (%d) <= 24",
			ErrInvalidCalendar, cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.StepMinutes <= 0 || cfg.StepMinutes > 60 || 60%cfg.StepMinutes != 0 {
		return nil, fmt.Errorf("%w: step %d must divide 60", ErrInvalidCalendar, cfg.StepMinutes)
	}

	c := &BusinessCalendar{
		openHour:    cfg.OpenHour,
		closeHour:   cfg.CloseHour,
		step:        cfg.StepMinutes,
		closedDates: make(map[Date]struct{}, len(cfg.ClosedDates)),
		loc:         cfg.Location,
	}
	if c.loc == nil {
		c.loc = time.Local
	}

	for _, wd := range cfg.ClosedWeekdays {
		if wd < 0 || wd > 6 {
			return nil, fmt.Errorf("%w: closed weekday %d out of range", ErrInvalidCalendar, wd)
		}
		c.closedWeekdays[wd] = true
	}
	for _, s := range cfg.ClosedDates {
		d, err := ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: closed date %q", ErrInvalidCalendar, s)
		}
		c.closedDates[d] = struct{}{}
	}
	return c, nil
}

// Location returns the business time zone.
func (c *BusinessCalendar) Location() *time.Location { return c.loc }

// StepMinutes returns the slot granularity.
func (c *BusinessCalendar) StepMinutes() int { return c.step }

// Config returns a copy of the configuration the calendar was built from.
func (c *BusinessCalendar) Config() CalendarConfig {
	cfg := CalendarConfig{
		OpenHour:    c.openHour,
		CloseHour:   c.closeHour,
		StepMinutes: c.step,
		Location:    c.loc,
	}
	for wd, closed := range c.closedWeekdays {
		if closed {
			cfg.ClosedWeekdays = append(cfg.ClosedWeekdays, wd)
		}
	}
	for d := range c.closedDates {
		cfg.ClosedDates = append(cfg.ClosedDates, d.String())
	}
	sort.Strings(cfg.ClosedDates)
	return cfg
}

// Slots enumerates the day's slots at the configured step.
func (c *BusinessCalendar) Slots() []Slot {
	return c.SlotsWithStep(c.step)
}

// SlotsWithStep enumerates h:mm from the opening hour, stepping by step
// minutes within each hour. In the final open hour no slot starts after
// half past. A non-positive step yields no slots.
func (c *BusinessCalendar) SlotsWithStep(step int) []Slot {
	if step <= 0 {
		return nil
	}
	slots := make([]Slot, 0, (c.closeHour-c.openHour)*((59/step)+1))
	for h := c.openHour; h < c.closeHour; h++ {
		for m := 0; m < 60; m += step {
			if h == c.closeHour-1 && m > 30 {
				break
			}
			slots = append(slots, Slot{Hour: h, Minute: m})
		}
	}
	return slots
}

// IsWithinBusinessHours reports whether t, read in the business time zone,
// falls inside opening hours.
func (c *BusinessCalendar) IsWithinBusinessHours(t time.Time) bool {
	local := t.In(c.loc)
	h, m := local.Hour(), local.Minute()
	if h < c.openHour || h >= c.closeHour {
		return false
	}
	return !(h == c.closeHour-1 && m > 30)
}

// IsOnGrid reports whether t starts exactly on a slot boundary.
func (c *BusinessCalendar) IsOnGrid(t time.Time) bool {
	local := t.In(c.loc)
	return local.Minute()%c.step == 0 && local.Second() == 0 && local.Nanosecond() == 0
}

// IsBookableInstant combines IsWithinBusinessHours and IsOnGrid.
func (c *BusinessCalendar) IsBookableInstant(t time.Time) bool {
	return c.IsWithinBusinessHours(t) && c.IsOnGrid(t)
}

// IsClosedDay reports whether d is closed.
func (c *BusinessCalendar) IsClosedDay(d Date) bool {
	_, closed := c.ClosedReason(d)
	return closed
}

// ClosedReason reports why d is closed. A closed weekday wins over a listed
// date.
func (c *BusinessCalendar) ClosedReason(d Date) (ClosedReason, bool) {
	wd := d.Weekday()
	if c.closedWeekdays[wd] {
		return ClosedReasonWeekday, true
	}
	if _, ok := c.closedDates[d]; ok {
		return ClosedReasonDate, true
	}
	return 0, false
}

// Compose returns the instant of slot s on day d in the business time zone.
func (c *BusinessCalendar) Compose(d Date, s Slot) time.Time {
	return time.Date(d.Year, d.Month, d.Day, s.Hour, s.Minute, 0, 0, c.loc)
}

// DayBounds returns [start, end) of d in the business time zone.
func (c *BusinessCalendar) DayBounds(d Date) (time.Time, time.Time) {
	start := d.In(c.loc)
	return start, start.AddDate(0, 0, 1)
}

// LocalDate returns the business day containing t.
func (c *BusinessCalendar) LocalDate(t time.Time) Date {
	return DateOf(t.In(c.loc))
}

// LocalSlot returns the business time of day of t.
func (c *BusinessCalendar) LocalSlot(t time.Time) Slot {
	return SlotOf(t.In(c.loc))
}
