package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/statelog"
)

const (
	KeyDayStartHour = "day_start_hour"
	KeyWorkStates   = "work_states"
)

// TargetKey returns the settings key of the daily target for w, e.g.
// "target_monday". Targets are stored in seconds.
func TargetKey(w calendar.Weekday) string {
	return "target_" + strings.ToLower(w.String())
}

// ValidateSetting checks a value before it is stored under key.
func ValidateSetting(key, value string) error {
	switch {
	case key == KeyDayStartHour:
		h, err := strconv.Atoi(value)
		if err != nil || h < 0 || h > 23 {
			return fmt.Errorf("%s must be an hour between 0 and 23, got %q", key, value)
		}
	case key == KeyWorkStates:
		if _, err := parseWorkStates(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	case strings.HasPrefix(key, "target_"):
		if _, err := calendar.ParseWeekday(strings.TrimPrefix(key, "target_")); err != nil {
			return fmt.Errorf("unknown setting %q", key)
		}
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 0 || secs > 24*3600 {
			return fmt.Errorf("%s must be seconds between 0 and 86400, got %q", key, value)
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// LoadSchedule builds the work schedule from the settings table.
func (s *Store) LoadSchedule() (calendar.Schedule, error) {
	sched := calendar.DefaultSchedule()

	raw, err := s.GetSetting(KeyDayStartHour)
	if err != nil {
		return sched, err
	}
	if sched.DayStartHour, err = strconv.Atoi(raw); err != nil {
		return sched, fmt.Errorf("setting %s: %w", KeyDayStartHour, err)
	}

	for _, w := range calendar.Weekdays {
		raw, err := s.GetSetting(TargetKey(w))
		if err != nil {
			return sched, err
		}
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return sched, fmt.Errorf("setting %s: %w", TargetKey(w), err)
		}
		sched.Targets[w] = time.Duration(secs) * time.Second
	}
	return sched, sched.Validate()
}

// SaveSchedule stores every field of sched.
func (s *Store) SaveSchedule(sched calendar.Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, KeyDayStartHour, strconv.Itoa(sched.DayStartHour)); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	for _, w := range calendar.Weekdays {
		secs := int64(sched.Targets[w] / time.Second)
		if _, err := tx.Exec(upsert, TargetKey(w), strconv.FormatInt(secs, 10)); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
	}
	return tx.Commit()
}

// LoadWorkStates returns the states that count as work.
func (s *Store) LoadWorkStates() ([]statelog.State, error) {
	raw, err := s.GetSetting(KeyWorkStates)
	if err != nil {
		return nil, err
	}
	return parseWorkStates(raw)
}

func (s *Store) SaveWorkStates(states []statelog.State) error {
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = string(st)
	}
	value := strings.Join(names, ",")
	if _, err := parseWorkStates(value); err != nil {
		return err
	}
	return s.SetSetting(KeyWorkStates, value)
}

func parseWorkStates(raw string) ([]statelog.State, error) {
	var states []statelog.State
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, err := statelog.ParseState(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(states, st) {
			states = append(states, st)
		}
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("at least one work state is required")
	}
	return states, nil
}
