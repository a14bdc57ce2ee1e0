package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sadopc/worktime/internal/statelog"
)

// StatusResult is the current state and log details.
type StatusResult struct {
	State     string     `json:"state,omitempty"`
	Since     *time.Time `json:"since,omitempty"`
	LastCheck *time.Time `json:"last_check,omitempty"`
	LogPath   string     `json:"log_path"`
	LogBytes  int64      `json:"log_bytes"`

	now time.Time
}

func (r StatusResult) String() string {
	var b strings.Builder
	if r.State == "" {
		b.WriteString("State:      no history yet\n")
	} else {
		fmt.Fprintf(&b, "State:      %s since %s (%s)\n", title(r.State),
			r.Since.In(r.now.Location()).Format("Mon 15:04"),
			humanize.RelTime(*r.Since, r.now, "ago", "from now"))
	}
	if r.LastCheck == nil {
		b.WriteString("Last check: never\n")
	} else {
		fmt.Fprintf(&b, "Last check: %s\n", humanize.RelTime(*r.LastCheck, r.now, "ago", "from now"))
	}
	fmt.Fprintf(&b, "Log:        %s (%s)", r.LogPath, humanize.Bytes(uint64(r.LogBytes)))
	return b.String()
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current state and when it was last checked",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	res := StatusResult{LogPath: e.log.Path(), now: e.tracker.Calendar().Now()}

	last, ok, err := e.log.ReadLast()
	if err != nil {
		return err
	}
	if ok {
		since := last.Time()
		res.State, res.Since = string(last.State), &since
	}

	checked, ok, err := e.tracker.LastCheck()
	if err != nil {
		return err
	}
	if ok {
		res.LastCheck = &checked
	}

	info, err := os.Stat(e.log.Path())
	if err != nil {
		return &statelog.IOError{Op: "stat log", Path: e.log.Path(), Err: err}
	}
	res.LogBytes = info.Size()

	return formatter.Success(res)
}

// title renders a state for display, e.g. "Leisure".
func title(s string) string {
	return cases.Title(language.English).String(s)
}
