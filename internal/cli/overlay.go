package cli

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/tracker"
	"github.com/sadopc/worktime/internal/tui"
)

// runOverlay opens the terminal overlay and samples in the background until
// it is closed.
func runOverlay(opts *RootOptions, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.sampler(opts)
	if err != nil {
		return err
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	var program *tea.Program
	poller := tracker.NewPoller(e.tracker,
		tracker.WithInterval(e.cfg.PollInterval()),
		tracker.WithPollerLogger(e.logger),
		tracker.OnChange(func(state statelog.State) {
			program.Send(tui.StateChangedMsg{State: state})
		}),
	)
	program = tea.NewProgram(tui.NewApp(e.tracker, e.store, poller),
		tea.WithAltScreen(), tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := poller.Run(ctx, s); err != nil {
			e.logger.Error("background polling failed", "error", err)
		}
	}()

	_, err = program.Run()
	interrupted := parentCtx.Err() != nil
	cancel()
	wg.Wait()
	if err != nil && !interrupted {
		return WrapExitError(ExitFailure, "overlay failed", err)
	}
	return nil
}
