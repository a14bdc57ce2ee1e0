package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RatioResult is the share of time spent working since a point in time.
type RatioResult struct {
	Since time.Time `json:"since"`
	Ratio float64   `json:"ratio"`
}

func (r RatioResult) String() string {
	return fmt.Sprintf("Work ratio since %s: %.1f%%", r.Since.Format("Mon Jan 02 15:04"), 100*r.Ratio)
}

type ratioOptions struct {
	since string
}

// NewRatioCommand creates the ratio command.
func NewRatioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ratioOptions{}

	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "Show the share of time spent working",
		Long: `Show the share of time spent in a work state between --since and now.
Time before the first recorded transition counts as idle.

Example:
  worktime ratio
  worktime ratio --since today
  worktime ratio --since 2h`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRatio(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.since, "since", "week", "start of the window (today, week, HH:MM, date or duration ago)")
	return cmd
}

func runRatio(rootOpts *RootOptions, opts *ratioOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	e, err := openEnv(rootOpts)
	if err != nil {
		return err
	}
	defer e.Close()

	since, err := parseWhen(e.tracker, "since", opts.since)
	if err != nil {
		return err
	}
	ratio, err := e.tracker.WorkRatioSince(since)
	if err != nil {
		return err
	}
	return formatter.Success(RatioResult{Since: since, Ratio: ratio})
}
