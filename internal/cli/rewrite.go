package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/statelog"
)

// RewriteResult describes an applied correction.
type RewriteResult struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	State         string    `json:"state"`
	BackupPath    string    `json:"backup_path"`
	EntriesBefore int       `json:"entries_before"`
	EntriesAfter  int       `json:"entries_after"`
}

func (r RewriteResult) String() string {
	return fmt.Sprintf("Set %s to %s (%d -> %d entries)\nBackup: %s",
		formatSpan(r.Start, r.End), r.State, r.EntriesBefore, r.EntriesAfter, r.BackupPath)
}

type rewriteOptions struct {
	start string
	end   string
	state string
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Correct the state of a past time range",
		Long: `Replace everything recorded between --start and --end with one state.
The state in effect before the range resumes after it. The log is backed
up next to itself before it is replaced, and ranges reaching into the
future are rejected.

Example:
  worktime rewrite --start 12:00 --end 13:00 --state leisure
  worktime rewrite --start "2024-01-02 09:00" --end "2024-01-02 17:00" --state work`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", "start of the range (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "end of the range (required)")
	cmd.Flags().StringVar(&opts.state, "state", "", "state to record: work, email, leisure or idle (required)")
	return cmd
}

func runRewrite(rootOpts *RootOptions, opts *rewriteOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	for _, f := range []struct{ name, value string }{{"start", opts.start}, {"end", opts.end}, {"state", opts.state}} {
		if f.value == "" {
			return invalidArgs("--%s is required", f.name)
		}
	}
	state, err := statelog.ParseState(opts.state)
	if err != nil {
		return invalidArgs("--state: %v", err)
	}

	e, err := openEnv(rootOpts)
	if err != nil {
		return err
	}
	defer e.Close()

	start, err := parseWhen(e.tracker, "start", opts.start)
	if err != nil {
		return err
	}
	end, err := parseWhen(e.tracker, "end", opts.end)
	if err != nil {
		return err
	}

	res, err := e.tracker.RewriteHistory(start, end, state)
	if err != nil {
		return err
	}
	formatter.VerboseLog("backed up %s to %s", e.log.Path(), res.BackupPath)

	return formatter.Success(RewriteResult{
		Start:         start,
		End:           end,
		State:         string(state),
		BackupPath:    res.BackupPath,
		EntriesBefore: res.EntriesBefore,
		EntriesAfter:  res.EntriesAfter,
	})
}

// formatSpan renders a time range, leaving out the end date when the range
// stays within one day.
func formatSpan(start, end time.Time) string {
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return start.Format("Mon Jan 02 15:04") + "-" + end.Format("15:04")
	}
	return start.Format("Mon Jan 02 15:04") + " - " + end.Format("Mon Jan 02 15:04")
}
