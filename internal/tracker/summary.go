package tracker

import (
	"fmt"
	"slices"
	"time"

	"github.com/sadopc/worktime/internal/calendar"
)

// DaySummary is the work done on one day of the current week.
type DaySummary struct {
	Weekday calendar.Weekday
	Worked  time.Duration
	Target  time.Duration
	// Ratio is Worked/Target, or 1 when there is no target.
	Ratio float64
}

// Percent returns the ratio as a truncated percentage.
func (d DaySummary) Percent() int {
	return int(100 * d.Ratio)
}

// DaySummaries returns the days of the current week up to today, newest
// first.
func (t *Tracker) DaySummaries() ([]DaySummary, error) {
	days := t.cal.WeekSoFar()
	out := make([]DaySummary, 0, len(days))
	for _, w := range slices.Backward(days) {
		worked, err := t.WorkTimeForWeekday(w)
		if err != nil {
			return nil, err
		}
		target := t.cfg.Schedule.Target(w)
		ratio := 1.0
		if target != 0 {
			ratio = worked.Seconds() / target.Seconds()
		}
		out = append(out, DaySummary{Weekday: w, Worked: worked, Target: target, Ratio: ratio})
	}
	return out, nil
}

// WeekBalance returns work minus target over the days of the week before
// today. A negative balance is undertime.
func (t *Tracker) WeekBalance() (time.Duration, error) {
	var balance time.Duration
	for _, w := range t.cal.ElapsedWeekdays() {
		worked, err := t.WorkTimeForWeekday(w)
		if err != nil {
			return 0, err
		}
		balance += worked - t.cfg.Schedule.Target(w)
	}
	return balance, nil
}

// SummaryLines formats the week for display: one line per day up to today,
// newest first, followed by the overtime balance of the previous days.
//
//	Wed: 42% (3h 0m)
//	Tue: 128% (9h 0m)
//	Mon: 85% (6h 0m)
//	Week overtime: 1h 0m
func (t *Tracker) SummaryLines() ([]string, error) {
	days, err := t.DaySummaries()
	if err != nil {
		return nil, err
	}
	balance, err := t.WeekBalance()
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(days)+1)
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("%s: %d%% (%s)", d.Weekday.Short(), d.Percent(), FormatHM(d.Worked)))
	}
	return append(lines, BalanceLine(balance)), nil
}

// BalanceLine formats a week balance as overtime or undertime.
func BalanceLine(balance time.Duration) string {
	if balance < 0 {
		return "Week undertime: " + FormatHM(-balance)
	}
	return "Week overtime: " + FormatHM(balance)
}

// FormatHM formats d as whole hours and minutes, e.g. "7h 5m". Seconds are
// truncated and hours are not wrapped at a day.
func FormatHM(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}
