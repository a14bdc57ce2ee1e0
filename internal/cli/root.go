// Package cli implements the worktime command line.
package cli

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/config"
	"github.com/sadopc/worktime/internal/tracker"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	// now and location fix the clock and time zone; tests override them.
	now      func() time.Time
	location *time.Location
	// sampler replaces the configured sampler when set.
	sampler tracker.Sampler
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the worktime CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{now: time.Now, location: time.Local})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worktime",
		Short: "worktime - where did the day go",
		Long: `Track how the working day is spent by sampling the current activity
state and recording every change in a plain text log.

Without a subcommand worktime opens the overlay and samples in the
background while it is open.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return invalidArgs("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay(opts, cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidArgs, Message: "invalid flags", Err: err}
	})

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigPath, "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewRatioCommand(opts))
	cmd.AddCommand(NewRewriteCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewCorrectionsCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	opts := &RootOptions{now: time.Now, location: time.Local}
	return execute(newRootCommand(opts), opts)
}

// execute runs cmd and reports any error in the requested format.
func execute(cmd *cobra.Command, opts *RootOptions) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	code, exit := classify(err)
	f := newFormatter(opts, cmd)
	if !isValidFormat(f.Format) {
		f.Format = "text"
	}
	_ = f.Error(code, err.Error(), nil)
	return exit
}

// usageArgs reports positional argument errors as invalid arguments.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return invalidArgs("%v", err)
		}
		return nil
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
