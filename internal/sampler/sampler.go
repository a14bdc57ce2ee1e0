// Package sampler decides which activity state the user is in right now.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/statelog"
)

// Modes accepted by New.
const (
	ModeIdle    = "idle"
	ModeCommand = "command"
)

// Sampler reports the current activity state.
type Sampler interface {
	Sample(ctx context.Context) (statelog.State, error)
}

// Runner runs an external program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// New builds the sampler for mode. Idle mode reports work while the user has
// been active within threshold. Command mode runs command through the shell
// and expects a state label on its output.
func New(mode, command string, threshold time.Duration) (Sampler, error) {
	switch mode {
	case "", ModeIdle:
		return NewIdleSampler(DefaultIdleSource(), threshold), nil
	case ModeCommand:
		if strings.TrimSpace(command) == "" {
			return nil, fmt.Errorf("sampler mode %q needs a command", mode)
		}
		return NewCommandSampler(command), nil
	default:
		return nil, fmt.Errorf("unknown sampler mode %q (want %s or %s)", mode, ModeIdle, ModeCommand)
	}
}

// DefaultIdleSource returns ioreg on macOS and xprintidle elsewhere.
func DefaultIdleSource() IdleSource {
	if runtime.GOOS == "darwin" {
		return &IORegSource{}
	}
	return &XPrintIdleSource{}
}
