// Package aggregate turns the transition log into time totals per state.
package aggregate

import (
	"fmt"
	"math"

	"github.com/sadopc/worktime/internal/statelog"
)

// RangeReader yields the entries in effect during [start, end], clipped to
// the range and closed by a trailing entry. *statelog.Store implements it.
type RangeReader interface {
	ReadRange(start, end float64) ([]statelog.Entry, error)
}

// DefaultWorkStates are the states that count as work.
var DefaultWorkStates = []statelog.State{statelog.StateWork, statelog.StateEmail}

// Aggregator computes per-state totals over time ranges.
type Aggregator struct {
	src        RangeReader
	workStates map[statelog.State]bool
}

// New returns an aggregator reading from src. A nil or empty workStates uses
// DefaultWorkStates.
func New(src RangeReader, workStates []statelog.State) *Aggregator {
	if len(workStates) == 0 {
		workStates = DefaultWorkStates
	}
	ws := make(map[statelog.State]bool, len(workStates))
	for _, s := range workStates {
		ws[s] = true
	}
	return &Aggregator{src: src, workStates: ws}
}

// IsWork reports whether state counts as work.
func (a *Aggregator) IsWork(state statelog.State) bool {
	return a.workStates[state]
}

// CumulativeSeconds returns the seconds spent in each state during
// [start, end]. Every state is present in the result and the values sum to
// end - start: time after now and before the first entry count as idle.
func (a *Aggregator) CumulativeSeconds(start, end float64) (map[statelog.State]float64, error) {
	if start >= end {
		return nil, fmt.Errorf("cumulative seconds [%v, %v]: %w", start, end, statelog.ErrInvalidRange)
	}
	entries, err := a.src.ReadRange(start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[statelog.State]float64, len(statelog.States))
	for _, s := range statelog.States {
		totals[s] = 0
	}
	for i, cur := range entries {
		next := end
		if i+1 < len(entries) {
			next = math.Min(entries[i+1].Timestamp, end)
		}
		if d := next - math.Max(cur.Timestamp, start); d > 0 {
			totals[cur.State] += d
		}
	}
	return totals, nil
}

// WorkSeconds returns the seconds spent in work states during [start, end].
func (a *Aggregator) WorkSeconds(start, end float64) (float64, error) {
	totals, err := a.CumulativeSeconds(start, end)
	if err != nil {
		return 0, err
	}
	return a.workOf(totals), nil
}

// WorkRatio returns the share of [start, end] spent in work states.
func (a *Aggregator) WorkRatio(start, end float64) (float64, error) {
	work, err := a.WorkSeconds(start, end)
	if err != nil {
		return 0, err
	}
	return work / (end - start), nil
}

func (a *Aggregator) workOf(totals map[statelog.State]float64) float64 {
	var sum float64
	for s, secs := range totals {
		if a.workStates[s] {
			sum += secs
		}
	}
	return sum
}
