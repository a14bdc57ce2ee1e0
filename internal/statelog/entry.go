package statelog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// State is an activity classification.
type State string

const (
	StateWork    State = "work"
	StateEmail   State = "email"
	StateLeisure State = "leisure"
	StateIdle    State = "idle"
)

// States lists every valid state in display order.
var States = []State{StateWork, StateEmail, StateLeisure, StateIdle}

// ParseState validates a state label.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state %q (want one of work, email, leisure, idle)", s)
}

// Entry is one stored state transition.
type Entry struct {
	Timestamp float64 // seconds since epoch
	State     State
}

// Time converts the entry timestamp to a time.Time.
func (e Entry) Time() time.Time {
	return FromUnix(e.Timestamp)
}

// Unix converts t to fractional epoch seconds.
func Unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FromUnix converts fractional epoch seconds to a time.Time.
func FromUnix(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9)))
}

func formatLine(e Entry) string {
	return strconv.FormatFloat(e.Timestamp, 'f', -1, 64) + "\t" + string(e.State) + "\n"
}

func parseLine(path string, lineNo int, raw string) (Entry, error) {
	line := strings.TrimSpace(raw)
	fields := strings.Split(line, "\t")
	if len(fields) != 2 {
		return Entry{}, &ParseError{Path: path, Line: lineNo, Content: raw,
			Reason: fmt.Sprintf("expected 2 tab-separated fields, got %d", len(fields))}
	}
	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return Entry{}, &ParseError{Path: path, Line: lineNo, Content: raw,
			Reason: fmt.Sprintf("timestamp %q is not a number", fields[0])}
	}
	state, err := ParseState(fields[1])
	if err != nil {
		return Entry{}, &ParseError{Path: path, Line: lineNo, Content: raw, Reason: err.Error()}
	}
	return Entry{Timestamp: ts, State: state}, nil
}
