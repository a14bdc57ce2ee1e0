package sampler

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/worktime/internal/statelog"
)

// CommandSampler runs a shell command and reads the state label it prints,
// e.g. a script that inspects the focused window.
type CommandSampler struct {
	command string
	run     Runner
}

func NewCommandSampler(command string) *CommandSampler {
	return &CommandSampler{command: command, run: execRunner}
}

func (s *CommandSampler) Sample(ctx context.Context) (statelog.State, error) {
	out, err := s.run(ctx, "sh", "-c", s.command)
	if err != nil {
		return "", err
	}
	label := strings.ToLower(strings.TrimSpace(string(out)))
	state, err := statelog.ParseState(label)
	if err != nil {
		return "", fmt.Errorf("sampler command %q: %w", s.command, err)
	}
	return state, nil
}
