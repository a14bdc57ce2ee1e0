// Package tracker ties the transition log, aggregation and calendar together
// into the operations the command line and the overlay use.
package tracker

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sadopc/worktime/internal/aggregate"
	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/statelog"
)

// Config is the immutable tracker configuration. Build a new Tracker with
// WithConfig to change it.
type Config struct {
	Schedule   calendar.Schedule
	WorkStates []statelog.State
	Location   *time.Location
}

// DefaultConfig returns the default schedule with work and email as work
// states in the local time zone.
func DefaultConfig() Config {
	return Config{
		Schedule:   calendar.DefaultSchedule(),
		WorkStates: slices.Clone(aggregate.DefaultWorkStates),
		Location:   time.Local,
	}
}

// CorrectionRecorder keeps an audit trail of history rewrites.
type CorrectionRecorder interface {
	RecordCorrection(start, end time.Time, state statelog.State, backupPath string) error
}

// Tracker is the facade over the transition log.
type Tracker struct {
	log      *statelog.Store
	marker   *statelog.Marker
	recorder CorrectionRecorder
	logger   *slog.Logger

	// mu serializes writers: sampling and history rewrites.
	mu *sync.Mutex

	cfg Config
	cal *calendar.Calendar
	agg *aggregate.Aggregator
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMarker records every sampling attempt in m.
func WithMarker(m *statelog.Marker) Option {
	return func(t *Tracker) { t.marker = m }
}

// WithRecorder records history rewrites in r.
func WithRecorder(r CorrectionRecorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithLogger sets the logger for state changes and recorder failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New returns a tracker over log. The log's clock is the tracker's clock.
func New(log *statelog.Store, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		log:    log,
		logger: slog.New(slog.DiscardHandler),
		mu:     &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.setConfig(cfg)
	return t
}

func (t *Tracker) setConfig(cfg Config) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if len(cfg.WorkStates) == 0 {
		cfg.WorkStates = slices.Clone(aggregate.DefaultWorkStates)
	}
	t.cfg = cfg
	t.cal = calendar.New(cfg.Schedule, t.log.Now, cfg.Location)
	t.agg = aggregate.New(t.log, cfg.WorkStates)
}

// WithConfig returns a tracker with cfg that shares the log, marker, recorder
// and writer lock with t.
func (t *Tracker) WithConfig(cfg Config) *Tracker {
	c := &Tracker{
		log:      t.log,
		marker:   t.marker,
		recorder: t.recorder,
		logger:   t.logger,
		mu:       t.mu,
	}
	c.setConfig(cfg)
	return c
}

// Config returns the tracker configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Calendar returns the calendar built from the configured schedule.
func (t *Tracker) Calendar() *calendar.Calendar {
	return t.cal
}

// Aggregator returns the aggregator using the configured work states.
func (t *Tracker) Aggregator() *aggregate.Aggregator {
	return t.agg
}

// Log returns the underlying transition log.
func (t *Tracker) Log() *statelog.Store {
	return t.log
}

func (t *Tracker) now() time.Time {
	return t.log.Now().In(t.cfg.Location)
}

// CurrentState returns the state of the last transition. ok is false before
// anything has been recorded.
func (t *Tracker) CurrentState() (state statelog.State, ok bool, err error) {
	last, ok, err := t.log.ReadLast()
	if err != nil || !ok {
		return "", false, err
	}
	return last.State, true, nil
}

// LastCheck returns the time of the most recent sampling attempt.
func (t *Tracker) LastCheck() (time.Time, bool, error) {
	if t.marker == nil {
		return time.Time{}, false, nil
	}
	ts, ok, err := t.marker.Read()
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return statelog.FromUnix(ts), true, nil
}

// CheckState records a sampled state at now and reports whether it differs
// from the previous state. Failing to update the last-check marker is logged
// and does not fail the check.
func (t *Tracker) CheckState(sampled statelog.State, now time.Time) (changed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := statelog.Unix(now)
	if t.marker != nil {
		if err := t.marker.Write(ts); err != nil {
			t.logger.Warn("write last check failed", "path", t.marker.Path(), "error", err)
		}
	}

	changed, err = t.log.Append(ts, sampled)
	if err != nil {
		return false, fmt.Errorf("check state %s: %w", sampled, err)
	}
	if changed {
		t.logger.Info("state changed", "state", sampled)
	}
	return changed, nil
}

// WorkRatioSince returns the share of time since start spent working.
func (t *Tracker) WorkRatioSince(start time.Time) (float64, error) {
	return t.agg.WorkRatio(statelog.Unix(start), statelog.Unix(t.now()))
}

// WorkTimeForWeekday returns the work done on w in the current week.
func (t *Tracker) WorkTimeForWeekday(w calendar.Weekday) (time.Duration, error) {
	start, end, err := t.cal.WeekdayBounds(w)
	if err != nil {
		return 0, err
	}
	secs, err := t.agg.WorkSeconds(statelog.Unix(start), statelog.Unix(end))
	if err != nil {
		return 0, err
	}
	return seconds(secs), nil
}

// TodayTotals returns the time spent in each state since the start of the
// current logical day.
func (t *Tracker) TodayTotals() (map[statelog.State]time.Duration, error) {
	start, _ := t.cal.DayBounds(0)
	now := t.now()
	out := make(map[statelog.State]time.Duration, len(statelog.States))
	for _, s := range statelog.States {
		out[s] = 0
	}
	if !now.After(start) {
		return out, nil
	}
	totals, err := t.agg.CumulativeSeconds(statelog.Unix(start), statelog.Unix(now))
	if err != nil {
		return nil, err
	}
	for s, secs := range totals {
		out[s] = seconds(secs)
	}
	return out, nil
}

// History returns the transitions from start until now, bracketed by a
// leading boundary and a trailing idle entry as statelog.Store.ReadRange does.
func (t *Tracker) History(start time.Time) ([]statelog.Entry, error) {
	return t.log.ReadRange(statelog.Unix(start), statelog.Unix(t.now()))
}

// RewriteHistory sets the state of [start, end] to state. It waits for any
// sampling in progress and records the correction when a recorder is set.
func (t *Tracker) RewriteHistory(start, end time.Time, state statelog.State) (statelog.RewriteResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := t.log.Rewrite(statelog.Unix(start), statelog.Unix(end), state)
	if err != nil {
		return statelog.RewriteResult{}, fmt.Errorf("rewrite history: %w", err)
	}
	if t.recorder != nil {
		if err := t.recorder.RecordCorrection(start, end, state, res.BackupPath); err != nil {
			t.logger.Warn("record correction failed", "error", err)
		}
	}
	return res, nil
}

func seconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
