// Package calendar maps wall-clock time onto logical work days and weeks.
//
// A logical day starts at Schedule.DayStartHour local time rather than at
// midnight, so work done shortly after midnight counts towards the previous
// day. Weeks start on Monday.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrFuture is returned for days or times that have not happened yet.
var ErrFuture = errors.New("date is in the future")

// Weekday is a day of the week with Monday = 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists the days of the week starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Short returns the three-letter name, e.g. "Mon".
func (w Weekday) Short() string {
	return w.String()[:3]
}

// FromTimeWeekday converts a time.Weekday (Sunday = 0).
func FromTimeWeekday(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// ParseWeekday accepts full or three-letter English names in any case.
func ParseWeekday(s string) (Weekday, error) {
	for _, w := range Weekdays {
		if strings.EqualFold(s, w.String()) || strings.EqualFold(s, w.Short()) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Calendar answers day and week questions relative to a clock.
type Calendar struct {
	sched Schedule
	now   func() time.Time
	loc   *time.Location
}

// New returns a calendar for sched. A nil now uses time.Now and a nil loc uses
// time.Local.
func New(sched Schedule, now func() time.Time, loc *time.Location) *Calendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{sched: sched, now: now, loc: loc}
}

func (c *Calendar) Schedule() Schedule {
	return c.sched
}

func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// logicalDate returns the calendar date of the logical day containing t.
func (c *Calendar) logicalDate(t time.Time) (year int, month time.Month, day int) {
	t = t.In(c.loc)
	year, month, day = t.Date()
	if t.Hour() < c.sched.DayStartHour {
		year, month, day = time.Date(year, month, day-1, 12, 0, 0, 0, c.loc).Date()
	}
	return year, month, day
}

// dayStart returns the start of the logical day dated year-month-day.
func (c *Calendar) dayStart(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, c.sched.DayStartHour, 0, 0, 0, c.loc)
}

// WeekdayOf returns the weekday of the logical day containing t.
func (c *Calendar) WeekdayOf(t time.Time) Weekday {
	y, m, d := c.logicalDate(t)
	return FromTimeWeekday(time.Date(y, m, d, 12, 0, 0, 0, c.loc).Weekday())
}

// CurrentWeekday returns the weekday of the current logical day.
func (c *Calendar) CurrentWeekday() Weekday {
	return c.WeekdayOf(c.now())
}

// DayBounds returns the start and end of the logical day offset days before
// today. Offset 0 is today.
func (c *Calendar) DayBounds(offset int) (start, end time.Time) {
	y, m, d := c.logicalDate(c.now())
	return c.dayStart(y, m, d-offset), c.dayStart(y, m, d-offset+1)
}

// WeekStart returns the start of Monday's logical day in the current week.
func (c *Calendar) WeekStart() time.Time {
	start, _ := c.DayBounds(int(c.CurrentWeekday()))
	return start
}

// IsThisWeek reports whether t falls in the current week.
func (c *Calendar) IsThisWeek(t time.Time) (bool, error) {
	if t.After(c.now()) {
		return false, fmt.Errorf("is this week %s: %w", t.Format(time.RFC3339), ErrFuture)
	}
	return !t.Before(c.WeekStart()), nil
}

// WeekdayBounds returns the logical day of w in the current week. Days later
// in the week than today fail with ErrFuture.
func (c *Calendar) WeekdayBounds(w Weekday) (start, end time.Time, err error) {
	current := c.CurrentWeekday()
	if w > current {
		return time.Time{}, time.Time{}, fmt.Errorf("bounds of %s (today is %s): %w", w, current, ErrFuture)
	}
	start, end = c.DayBounds(int(current - w))
	return start, end, nil
}

// ElapsedWeekdays returns the days of the current week before today.
func (c *Calendar) ElapsedWeekdays() []Weekday {
	return Weekdays[:c.CurrentWeekday()]
}

// WeekSoFar returns the days of the current week up to and including today.
func (c *Calendar) WeekSoFar() []Weekday {
	return Weekdays[:c.CurrentWeekday()+1]
}
