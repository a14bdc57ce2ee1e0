package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/export"
)

// ExportResult describes an export written to a file.
type ExportResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (r ExportResult) String() string {
	return fmt.Sprintf("Exported %d intervals to %s", r.Count, r.Path)
}

type exportOptions struct {
	as     string
	since  string
	output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded intervals as CSV or JSON",
		Long: `Export the state intervals between --since and now. Each interval runs
from one transition to the next; the last one ends now.

Example:
  worktime export --as csv > week.csv
  worktime export --as json --since today --output today.json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.as, "as", "csv", "export format (csv|json)")
	cmd.Flags().StringVar(&opts.since, "since", "week", "start of the export (today, week, HH:MM, date or duration ago)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func runExport(rootOpts *RootOptions, opts *exportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	if opts.as != "csv" && opts.as != "json" {
		return invalidArgs("invalid export format %q: must be csv or json", opts.as)
	}

	e, err := openEnv(rootOpts)
	if err != nil {
		return err
	}
	defer e.Close()

	since, err := parseWhen(e.tracker, "since", opts.since)
	if err != nil {
		return err
	}
	entries, err := e.tracker.History(since)
	if err != nil {
		return err
	}
	intervals := export.Intervals(entries, e.tracker.Aggregator().IsWork, e.tracker.Calendar().Now().Location())
	formatter.VerboseLog("exporting %d intervals since %s", len(intervals), since.Format("Mon Jan 02 15:04"))

	if opts.output == "-" {
		w := cmd.OutOrStdout()
		if opts.as == "json" {
			return export.WriteJSON(w, intervals, e.tracker.Calendar().Now())
		}
		return export.WriteCSV(w, intervals)
	}

	if opts.as == "json" {
		err = export.ToJSON(intervals, opts.output)
	} else {
		err = export.ToCSV(intervals, opts.output)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "export", err)
	}
	return formatter.Success(ExportResult{Path: opts.output, Count: len(intervals)})
}
