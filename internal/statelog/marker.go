package statelog

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/worktime/internal/fsutil"
)

// Marker is the last-check file: the time of the most recent sampling
// attempt, independent of whether the state changed.
type Marker struct {
	path string
}

// NewMarker returns a marker stored at path. The file is created on first Write.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Path returns the marker file path.
func (m *Marker) Path() string {
	return m.path
}

// Write replaces the marker with ts.
func (m *Marker) Write(ts float64) error {
	line := strconv.FormatFloat(ts, 'f', -1, 64) + "\n"
	if err := fsutil.AtomicWrite(m.path, []byte(line), 0o644, false); err != nil {
		return &IOError{Op: "write marker", Path: m.path, Err: err}
	}
	return nil
}

// Read returns the recorded timestamp. ok is false when no check has been
// recorded yet.
func (m *Marker) Read() (ts float64, ok bool, err error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, &IOError{Op: "read marker", Path: m.path, Err: err}
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, false, nil
	}
	ts, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, &ParseError{Path: m.path, Line: 1, Content: raw, Reason: "timestamp is not a number"}
	}
	return ts, true, nil
}
