package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/store"
)

// SettingResult is one stored setting.
type SettingResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingsResult lists every stored setting.
type SettingsResult struct {
	Settings []SettingResult `json:"settings"`
}

func (r SettingsResult) String() string {
	var b strings.Builder
	for i, s := range r.Settings {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-16s %s", s.Key, s.Value)
	}
	return b.String()
}

func (r SettingResult) String() string {
	return fmt.Sprintf("Set %s = %s", r.Key, r.Value)
}

// NewSettingsCommand creates the settings command.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List or change the work schedule settings",
		Long: `List the stored settings: the hour the logical day starts, the states
that count as work, and the daily targets in seconds.

Example:
  worktime settings
  worktime settings set target_friday 18000
  worktime settings set work_states work,email`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsList(rootOpts, cmd)
		},
	}
	cmd.AddCommand(newSettingsSetCommand(rootOpts))
	return cmd
}

func newSettingsSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runSettingsList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	settings, err := e.store.GetAllSettings()
	if err != nil {
		return WrapExitError(ExitFailure, "list settings", err)
	}
	res := SettingsResult{Settings: make([]SettingResult, 0, len(settings))}
	for _, s := range settings {
		res.Settings = append(res.Settings, SettingResult{Key: s.Key, Value: s.Value})
	}
	return formatter.Success(res)
}

func runSettingsSet(opts *RootOptions, cmd *cobra.Command, key, value string) error {
	formatter := newFormatter(opts, cmd)

	if err := store.ValidateSetting(key, value); err != nil {
		return invalidArgs("%v", err)
	}

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.SetSetting(key, value); err != nil {
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "save setting", Err: err}
	}
	e.logger.Info("setting changed", "key", key, "value", value)
	return formatter.Success(SettingResult{Key: key, Value: value})
}
