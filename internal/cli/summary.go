package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// DayResult is one day of the weekly summary.
type DayResult struct {
	Weekday       string `json:"weekday"`
	WorkedSeconds int64  `json:"worked_seconds"`
	TargetSeconds int64  `json:"target_seconds"`
	Percent       int    `json:"percent"`
}

// SummaryResult is the week so far, newest day first.
type SummaryResult struct {
	Days           []DayResult `json:"days"`
	BalanceSeconds int64       `json:"balance_seconds"`

	lines []string
}

func (r SummaryResult) String() string {
	return strings.Join(r.lines, "\n")
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the work done each day this week against its target",
		Long: `Show one line per day of the current week, newest first, with the share
of the daily target worked, followed by the overtime or undertime of the
days before today.

Example:
  worktime summary
  worktime summary --format json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, cmd)
		},
	}
}

func runSummary(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	days, err := e.tracker.DaySummaries()
	if err != nil {
		return err
	}
	balance, err := e.tracker.WeekBalance()
	if err != nil {
		return err
	}
	lines, err := e.tracker.SummaryLines()
	if err != nil {
		return err
	}

	res := SummaryResult{Days: make([]DayResult, 0, len(days)), BalanceSeconds: int64(balance.Seconds()), lines: lines}
	for _, d := range days {
		res.Days = append(res.Days, DayResult{
			Weekday:       d.Weekday.String(),
			WorkedSeconds: int64(d.Worked.Seconds()),
			TargetSeconds: int64(d.Target.Seconds()),
			Percent:       d.Percent(),
		})
	}
	formatter.VerboseLog("week started %s", e.tracker.Calendar().WeekStart().Format("Mon Jan 02 15:04"))
	return formatter.Success(res)
}
