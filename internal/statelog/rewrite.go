package statelog

import (
	"fmt"
	"strings"

	"github.com/sadopc/worktime/internal/fsutil"
)

// RewriteResult describes a completed history rewrite.
type RewriteResult struct {
	BackupPath    string
	EntriesBefore int
	EntriesAfter  int
}

// Rewrite replaces the history between start and end with a single state.
// The whole log is copied to a backup file first and then replaced
// atomically. Rewrites that end at or after now are rejected before anything
// is written.
func (s *Store) Rewrite(start, end float64, state State) (RewriteResult, error) {
	if _, err := ParseState(string(state)); err != nil {
		return RewriteResult{}, err
	}
	if start >= end {
		return RewriteResult{}, fmt.Errorf("rewrite [%v, %v]: %w", start, end, ErrInvalidRange)
	}
	now := Unix(s.now())
	if end >= now {
		return RewriteResult{}, fmt.Errorf("rewrite up to %v at %v: %w", end, now, ErrFutureRewrite)
	}

	backup, err := fsutil.CopyNew(s.path, fmt.Sprintf("%s.bck%d", s.path, int64(now)))
	if err != nil {
		return RewriteResult{}, &IOError{Op: "back up log", Path: s.path, Err: err}
	}

	history, err := s.Entries()
	if err != nil {
		return RewriteResult{}, err
	}
	rewritten := spliceHistory(history, start, end, state)

	var b strings.Builder
	for _, e := range rewritten {
		b.WriteString(formatLine(e))
	}
	if err := fsutil.AtomicWrite(s.path, []byte(b.String()), 0o644, true); err != nil {
		return RewriteResult{}, &IOError{Op: "replace log", Path: s.path, Err: err}
	}
	s.invalidate()

	s.logger.Info("history rewritten",
		"start", start, "end", end, "state", state,
		"backup", backup, "entries_before", len(history), "entries_after", len(rewritten))
	return RewriteResult{
		BackupPath:    backup,
		EntriesBefore: len(history),
		EntriesAfter:  len(rewritten),
	}, nil
}

// spliceHistory returns history with [start, end] set to state. The state in
// effect right after end is preserved by a resume entry at end. With nothing
// recorded up to end that state is idle.
func spliceHistory(history []Entry, start, end float64, state State) []Entry {
	var before, inside, after []Entry
	for _, e := range history {
		switch {
		case e.Timestamp < start:
			before = append(before, e)
		case e.Timestamp > end:
			after = append(after, e)
		default:
			inside = append(inside, e)
		}
	}

	resume := StateIdle
	switch {
	case len(inside) > 0:
		resume = inside[len(inside)-1].State
	case len(before) > 0:
		resume = before[len(before)-1].State
	}
	after = append([]Entry{{Timestamp: end, State: resume}}, after...)

	if n := len(before); n > 0 && before[n-1].State == state {
		start = before[n-1].Timestamp
		before = before[:n-1]
	}
	if after[0].State == state {
		after = after[1:]
	}

	out := make([]Entry, 0, len(before)+1+len(after))
	out = append(out, before...)
	out = append(out, Entry{Timestamp: start, State: state})
	out = append(out, after...)
	return dedupe(out)
}

// dedupe drops entries that repeat the previous entry's state.
func dedupe(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if len(out) > 0 && out[len(out)-1].State == e.State {
			continue
		}
		out = append(out, e)
	}
	return out
}
