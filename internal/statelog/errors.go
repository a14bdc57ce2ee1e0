package statelog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a query or rewrite has start >= end.
	ErrInvalidRange = errors.New("invalid range: start must be before end")

	// ErrFutureRewrite is returned when a rewrite reaches past recorded history.
	ErrFutureRewrite = errors.New("rewriting the future is not allowed")

	// ErrOutOfOrder is returned when an append is older than the last entry.
	ErrOutOfOrder = errors.New("timestamp is older than the last log entry")
)

// IOError wraps a failure to read or write the log storage.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed log line. Line is 1-based when known and
// zero for lines found by the reverse scanner.
type ParseError struct {
	Path    string
	Line    int
	Content string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d %q: %s", e.Path, e.Line, e.Content, e.Reason)
	}
	return fmt.Sprintf("parse %s line %q: %s", e.Path, e.Content, e.Reason)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
