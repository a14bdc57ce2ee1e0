// Package export writes the transition history as state intervals.
package export

import (
	"fmt"
	"time"

	"github.com/sadopc/worktime/internal/statelog"
)

// Interval is a span of time spent in one state.
type Interval struct {
	State statelog.State
	Work  bool
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Intervals turns range entries, as returned by statelog.Store.ReadRange, into
// intervals in loc. The last entry only closes the previous interval. Empty
// intervals are dropped.
func Intervals(entries []statelog.Entry, isWork func(statelog.State) bool, loc *time.Location) []Interval {
	if loc == nil {
		loc = time.Local
	}
	var out []Interval
	for i := 0; i+1 < len(entries); i++ {
		cur, next := entries[i], entries[i+1]
		if next.Timestamp <= cur.Timestamp {
			continue
		}
		out = append(out, Interval{
			State: cur.State,
			Work:  isWork != nil && isWork(cur.State),
			Start: cur.Time().In(loc),
			End:   next.Time().In(loc),
		})
	}
	return out
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
