package statelog

import (
	"fmt"
	"math"
	"os"
	"slices"
	"time"
)

// maxCachedRanges bounds the range cache. Callers that slide their window on
// every refresh would otherwise grow it without limit between appends.
const maxCachedRanges = 64

type cacheKey struct {
	start  float64
	offset int
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// ReadRange returns the entries in effect during [start, end] in ascending
// order, clipped to the range:
//
//   - a leading entry at start carrying the state in effect just before it
//     (idle when nothing was recorded before start), unless a stored entry
//     sits exactly at start;
//   - every stored entry with start <= ts <= min(end, now);
//   - a trailing idle entry at min(end, now) that closes the open interval.
//
// The stored history is never modified by a read.
func (s *Store) ReadRange(start, end float64) ([]Entry, error) {
	if start >= end {
		return nil, fmt.Errorf("read range [%v, %v]: %w", start, end, ErrInvalidRange)
	}

	raw, err := s.tail(start, 1)
	if err != nil {
		return nil, err
	}

	limit := math.Min(end, Unix(s.now()))
	if limit < start {
		limit = start
	}

	out := make([]Entry, 0, len(raw)+2)
	lead := StateIdle
	i := 0
	if len(raw) > 0 && raw[0].Timestamp < start {
		lead = raw[0].State
		i = 1
	}
	if i >= len(raw) || raw[i].Timestamp > start {
		out = append(out, Entry{Timestamp: start, State: lead})
	}
	for ; i < len(raw) && raw[i].Timestamp <= limit; i++ {
		out = append(out, raw[i])
	}
	out = append(out, Entry{Timestamp: limit, State: StateIdle})
	return out, nil
}

// tail returns, oldest first, every stored entry at or after start plus up to
// offset entries immediately before it. Results are cached until the log
// changes; the returned slice must not be modified.
func (s *Store) tail(start float64, offset int) ([]Entry, error) {
	stamp, err := s.statLog()
	if err != nil {
		return nil, err
	}
	key := cacheKey{start: start, offset: offset}

	s.mu.Lock()
	if s.stamp != stamp {
		s.cache = nil
		s.stamp = stamp
	}
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	var out []Entry
	remaining := offset
	for e, err := range s.Reverse() {
		if err != nil {
			return nil, err
		}
		if e.Timestamp < start {
			if remaining == 0 {
				break
			}
			remaining--
		}
		out = append(out, e)
	}
	slices.Reverse(out)

	s.mu.Lock()
	if s.stamp == stamp {
		if s.cache == nil || len(s.cache) >= maxCachedRanges {
			s.cache = make(map[cacheKey][]Entry)
		}
		s.cache[key] = out
	}
	s.mu.Unlock()
	return out, nil
}

func (s *Store) statLog() (fileStamp, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileStamp{}, nil
		}
		return fileStamp{}, &IOError{Op: "stat log", Path: s.path, Err: err}
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime()}, nil
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.stamp = fileStamp{}
	s.mu.Unlock()
}
