package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/tracker"
)

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Sample the activity state until interrupted",
		Long: `Sample the activity state on every poll interval and append each change
to the transition log. Runs in the foreground until interrupted.

Example:
  worktime track
  worktime track --verbose`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(rootOpts, cmd)
		},
	}
}

func runTrack(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

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
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := tracker.NewPoller(e.tracker,
		tracker.WithInterval(e.cfg.PollInterval()),
		tracker.WithPollerLogger(e.logger),
		tracker.OnChange(func(state statelog.State) {
			formatter.VerboseLog("%s %s", opts.now().Format("15:04:05"), state)
		}),
	)

	if opts.Format == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "Tracking to %s every %s. Press Ctrl-C to stop.\n",
			e.log.Path(), e.cfg.PollInterval())
	}
	if err := poller.Run(ctx, s); err != nil {
		return WrapExitError(ExitFailure, "tracking stopped", err)
	}
	return nil
}
