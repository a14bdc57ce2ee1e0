package cli

import (
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/tracker"
)

// parseWhen reads a time flag relative to the tracker's clock. Besides
// everything calendar.ParseTime accepts, "today" and "week" name the start
// of the current logical day and week.
func parseWhen(t *tracker.Tracker, flag, value string) (time.Time, error) {
	cal := t.Calendar()
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		start, _ := cal.DayBounds(0)
		return start, nil
	case "week":
		return cal.WeekStart(), nil
	}
	ts, err := calendar.ParseTime(value, cal.Now())
	if err != nil {
		return time.Time{}, invalidArgs("--%s: %v", flag, err)
	}
	return ts, nil
}
