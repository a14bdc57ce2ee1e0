package sampler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/statelog"
)

// DefaultIdleThreshold is how long without input before the user counts as
// idle.
const DefaultIdleThreshold = 5 * time.Minute

// IdleSource reports the time since the last keyboard or mouse input.
type IdleSource interface {
	IdleTime(ctx context.Context) (time.Duration, error)
}

// IdleSampler reports idle once input has stopped for longer than the
// threshold and work otherwise.
type IdleSampler struct {
	src       IdleSource
	threshold time.Duration
}

func NewIdleSampler(src IdleSource, threshold time.Duration) *IdleSampler {
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}
	return &IdleSampler{src: src, threshold: threshold}
}

func (s *IdleSampler) Sample(ctx context.Context) (statelog.State, error) {
	idle, err := s.src.IdleTime(ctx)
	if err != nil {
		return "", fmt.Errorf("idle time: %w", err)
	}
	if idle > s.threshold {
		return statelog.StateIdle, nil
	}
	return statelog.StateWork, nil
}

// IORegSource reads HIDIdleTime from `ioreg -c IOHIDSystem` (macOS).
type IORegSource struct {
	Run Runner
}

var hidIdleRe = regexp.MustCompile(`"HIDIdleTime"\s*=\s*([0-9]+)`)

func (s *IORegSource) IdleTime(ctx context.Context) (time.Duration, error) {
	run := s.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, "/usr/sbin/ioreg", "-c", "IOHIDSystem")
	if err != nil {
		return 0, err
	}
	return parseHIDIdle(out)
}

func parseHIDIdle(out []byte) (time.Duration, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := hidIdleRe.FindSubmatch(scanner.Bytes())
		if len(m) != 2 {
			continue
		}
		ns, err := strconv.ParseInt(string(m[1]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse HIDIdleTime %q: %w", m[1], err)
		}
		return time.Duration(ns), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("HIDIdleTime not found in ioreg output")
}

// XPrintIdleSource runs xprintidle, which prints the X11 idle time in
// milliseconds.
type XPrintIdleSource struct {
	Run Runner
}

func (s *XPrintIdleSource) IdleTime(ctx context.Context) (time.Duration, error) {
	run := s.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, "xprintidle")
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(out))
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse xprintidle output %q: %w", raw, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
