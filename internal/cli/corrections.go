package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/store"
)

// CorrectionResult is one recorded history rewrite.
type CorrectionResult struct {
	ID         string    `json:"id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	State      string    `json:"state"`
	BackupPath string    `json:"backup_path"`
	AppliedAt  time.Time `json:"applied_at"`
}

// CorrectionsResult lists recent corrections, newest first.
type CorrectionsResult struct {
	Corrections []CorrectionResult `json:"corrections"`

	now time.Time
}

func (r CorrectionsResult) String() string {
	if len(r.Corrections) == 0 {
		return "No corrections yet"
	}
	var b strings.Builder
	for i, c := range r.Corrections {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %-8s %s  (%s)", formatSpan(c.Start, c.End), c.State,
			c.BackupPath, humanize.RelTime(c.AppliedAt, r.now, "ago", "from now"))
	}
	return b.String()
}

type correctionsOptions struct {
	limit int
}

// NewCorrectionsCommand creates the corrections command.
func NewCorrectionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &correctionsOptions{}

	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "List recent history rewrites and their backups",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrections(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "maximum number of corrections to list")
	return cmd
}

func runCorrections(rootOpts *RootOptions, opts *correctionsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	if opts.limit <= 0 {
		return invalidArgs("--limit must be positive, got %d", opts.limit)
	}

	e, err := openEnv(rootOpts)
	if err != nil {
		return err
	}
	defer e.Close()

	list, err := e.store.ListCorrections(store.CorrectionFilter{Limit: opts.limit})
	if err != nil {
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "list corrections", Err: err}
	}

	loc := e.tracker.Calendar().Now().Location()
	res := CorrectionsResult{Corrections: make([]CorrectionResult, 0, len(list)), now: rootOpts.now()}
	for _, c := range list {
		res.Corrections = append(res.Corrections, CorrectionResult{
			ID:         c.ID,
			Start:      c.Start.In(loc),
			End:        c.End.In(loc),
			State:      c.State,
			BackupPath: c.BackupPath,
			AppliedAt:  c.AppliedAt.In(loc),
		})
	}
	return formatter.Success(res)
}
