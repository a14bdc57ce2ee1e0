package calendar

import (
	"fmt"
	"time"
)

// Schedule holds the daily work targets and the hour at which a logical day
// begins. It is a value type; change it by building a new one.
type Schedule struct {
	DayStartHour int
	Targets      [7]time.Duration
}

// DefaultSchedule is 7h Monday to Thursday, 6h on Friday and nothing on the
// weekend, with days starting at 07:00.
func DefaultSchedule() Schedule {
	return Schedule{
		DayStartHour: 7,
		Targets: [7]time.Duration{
			Monday:    7 * time.Hour,
			Tuesday:   7 * time.Hour,
			Wednesday: 7 * time.Hour,
			Thursday:  7 * time.Hour,
			Friday:    6 * time.Hour,
			Saturday:  0,
			Sunday:    0,
		},
	}
}

// Target returns the work target for w.
func (s Schedule) Target(w Weekday) time.Duration {
	if w < Monday || w > Sunday {
		return 0
	}
	return s.Targets[w]
}

// WithTarget returns a copy of s with the target for w replaced.
func (s Schedule) WithTarget(w Weekday, d time.Duration) Schedule {
	s.Targets[w] = d
	return s
}

// WeekTarget returns the sum of all daily targets.
func (s Schedule) WeekTarget() time.Duration {
	var total time.Duration
	for _, d := range s.Targets {
		total += d
	}
	return total
}

// Validate checks the day start hour and that every target fits in a day.
func (s Schedule) Validate() error {
	if s.DayStartHour < 0 || s.DayStartHour > 23 {
		return fmt.Errorf("day start hour %d out of range 0-23", s.DayStartHour)
	}
	for w, d := range s.Targets {
		if d < 0 || d > 24*time.Hour {
			return fmt.Errorf("%s target %s out of range 0-24h", Weekday(w), d)
		}
	}
	return nil
}
