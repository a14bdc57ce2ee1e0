package statelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultChunkSize = 64 * 1024

// Store is the append-only transition log backed by a text file.
type Store struct {
	path      string
	now       func() time.Time
	logger    *slog.Logger
	chunkSize int

	mu    sync.Mutex
	stamp fileStamp
	cache map[cacheKey][]Entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of "now" used to close the open interval.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for write events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open returns a store for the log at path, creating the directory and an
// empty log file when they do not exist.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &IOError{Op: "create log directory", Path: path, Err: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &IOError{Op: "create log", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &IOError{Op: "create log", Path: path, Err: err}
	}
	return s, nil
}

// Path returns the log file path.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Append records a transition to state at ts. It returns false without
// writing when state is already the current state.
func (s *Store) Append(ts float64, state State) (bool, error) {
	if _, err := ParseState(string(state)); err != nil {
		return false, err
	}

	last, ok, err := s.ReadLast()
	if err != nil {
		return false, err
	}
	if ok && last.State == state {
		return false, nil
	}
	if ok && ts < last.Timestamp {
		return false, fmt.Errorf("append %s at %v after %v: %w", state, ts, last.Timestamp, ErrOutOfOrder)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return false, &IOError{Op: "open log for append", Path: s.path, Err: err}
	}
	if err := s.dropTornLine(f); err != nil {
		f.Close()
		return false, err
	}
	if _, err := f.WriteString(formatLine(Entry{Timestamp: ts, State: state})); err != nil {
		f.Close()
		return false, &IOError{Op: "append", Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return false, &IOError{Op: "sync log", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return false, &IOError{Op: "close log", Path: s.path, Err: err}
	}

	s.invalidate()
	s.logger.Debug("state appended", "state", state, "ts", ts)
	return true, nil
}

// dropTornLine truncates an unterminated last line left by an interrupted
// append, so the next line starts on a fresh line.
func (s *Store) dropTornLine(f *os.File) error {
	rl, err := newReverseLines(f, s.chunkSize)
	if err != nil {
		return &IOError{Op: "check log tail", Path: s.path, Err: err}
	}
	if rl.terminated {
		return nil
	}
	size := rl.pos
	torn, err := rl.next()
	if err != nil {
		return &IOError{Op: "check log tail", Path: s.path, Err: err}
	}
	keep := size - int64(len(torn))
	if err := f.Truncate(keep); err != nil {
		return &IOError{Op: "truncate torn line", Path: s.path, Err: err}
	}
	s.logger.Warn("dropped unterminated last line", "path", s.path, "line", torn, "offset", keep)
	return nil
}

// ReadLast returns the most recent entry. ok is false for an empty log.
func (s *Store) ReadLast() (last Entry, ok bool, err error) {
	for e, err := range s.Reverse() {
		if err != nil {
			return Entry{}, false, err
		}
		return e, true, nil
	}
	return Entry{}, false, nil
}

// Entries returns the whole history in file order.
func (s *Store) Entries() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "open log", Path: s.path, Err: err}
	}
	defer f.Close()

	var entries []Entry
	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			// an unterminated last line is an append in flight
			return entries, nil
		}
		if err != nil {
			return nil, &IOError{Op: "read log", Path: s.path, Err: err}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseLine(s.path, lineNo, line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}
