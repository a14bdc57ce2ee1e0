package statelog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"
)

// Reverse returns the stored entries newest first. The file is read lazily
// from its tail in fixed-size chunks; every iteration reopens the file, so the
// sequence can be ranged over again to see newer data.
func (s *Store) Reverse() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield(Entry{}, &IOError{Op: "open log", Path: s.path, Err: err})
			return
		}
		defer f.Close()

		lines, err := newReverseLines(f, s.chunkSize)
		if err != nil {
			yield(Entry{}, &IOError{Op: "stat log", Path: s.path, Err: err})
			return
		}

		// the bytes after the last newline belong to an append in flight
		skip := !lines.terminated
		for {
			line, err := lines.next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Entry{}, &IOError{Op: "read log", Path: s.path, Err: err})
				return
			}
			if skip {
				skip = false
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			e, err := parseLine(s.path, 0, line)
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// reverseLines splits a file into lines from the end towards the start.
// The first line returned is whatever follows the final newline, which is
// empty for a properly terminated file.
type reverseLines struct {
	r          io.ReaderAt
	pos        int64
	tail       []byte
	chunk      int
	terminated bool
}

func newReverseLines(f *os.File, chunk int) (*reverseLines, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	rl := &reverseLines{r: f, pos: info.Size(), chunk: chunk, terminated: true}
	if rl.pos > 0 {
		var last [1]byte
		if _, err := f.ReadAt(last[:], rl.pos-1); err != nil && err != io.EOF {
			return nil, err
		}
		rl.terminated = last[0] == '\n'
	}
	return rl, nil
}

func (rl *reverseLines) next() (string, error) {
	for {
		if i := bytes.LastIndexByte(rl.tail, '\n'); i >= 0 {
			line := string(rl.tail[i+1:])
			rl.tail = rl.tail[:i]
			return line, nil
		}
		if rl.pos == 0 {
			if len(rl.tail) == 0 {
				return "", io.EOF
			}
			line := string(rl.tail)
			rl.tail = nil
			return line, nil
		}

		n := int64(rl.chunk)
		if n > rl.pos {
			n = rl.pos
		}
		rl.pos -= n
		buf := make([]byte, n, n+int64(len(rl.tail)))
		read, err := rl.r.ReadAt(buf, rl.pos)
		if int64(read) < n {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", fmt.Errorf("read %d bytes at %d: %w", n, rl.pos, err)
		}
		rl.tail = append(buf, rl.tail...)
	}
}
