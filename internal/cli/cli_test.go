package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/tracker"
)

// testNow is Wednesday noon. Days start at 07:00.
var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	dir    string
	config string
	opts   *RootOptions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`storage:
  dir: %s
sampler:
  mode: command
  command: echo work
  poll_interval_ms: 60000
  idle_threshold_seconds: 300
logging:
  level: debug
  file: ""
`, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	return &testEnv{
		dir:    dir,
		config: path,
		opts: &RootOptions{
			now:      func() time.Time { return testNow },
			location: time.UTC,
		},
	}
}

func (e *testEnv) logPath() string {
	return filepath.Join(e.dir, "worktime.tsv")
}

// seedWeek records Mon 08-14 and Tue 09-17 at work, and work since Wed 09:00.
func (e *testEnv) seedWeek(t *testing.T) {
	t.Helper()
	log, err := statelog.Open(e.logPath(), statelog.WithClock(e.opts.now))
	require.NoError(t, err)
	for _, tr := range []struct {
		day, hour int
		state     statelog.State
	}{
		{1, 8, statelog.StateWork},
		{1, 14, statelog.StateIdle},
		{2, 9, statelog.StateWork},
		{2, 17, statelog.StateIdle},
		{3, 9, statelog.StateWork},
	} {
		ts := time.Date(2024, 1, tr.day, tr.hour, 0, 0, 0, time.UTC)
		_, err := log.Append(statelog.Unix(ts), tr.state)
		require.NoError(t, err)
	}
}

func (e *testEnv) command(args ...string) (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := newRootCommand(e.opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", e.config))
	return cmd, out
}

func (e *testEnv) run(args ...string) (string, int) {
	cmd, out := e.command(args...)
	code := execute(cmd, e.opts)
	return out.String(), code
}

func decodeData(t *testing.T, out string, data any) {
	t.Helper()
	resp := struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"track", "status", "summary", "ratio", "rewrite", "export", "settings", "corrections"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "verbose", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestExecute_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("status", "--format", "xml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
}

func TestExecute_UnknownFlag(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("status", "--bogus")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
}

func TestExecute_UnexpectedArgs(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("status", "extra")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
}

func TestExecute_JSONError(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("rewrite", "--start", "11:00", "--end", "10:00", "--state", "work", "--format", "json")
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRange, resp.Error.Code)
}

func TestExecute_CreatesDefaultFiles(t *testing.T) {
	env := newTestEnv(t)

	_, code := env.run("status")
	require.Equal(t, ExitSuccess, code)
	assert.FileExists(t, env.logPath())
	assert.FileExists(t, filepath.Join(env.dir, "worktime.db"))
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func TestStatus_EmptyHistory(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("status")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "no history yet")
	assert.Contains(t, out, "Last check: never")
	assert.Contains(t, out, env.logPath())
}

func TestStatus_Text(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("status")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Work since Wed 09:00 (3 hours ago)")
}

func TestStatus_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("status", "--format", "json")
	require.Equal(t, ExitSuccess, code)

	var res StatusResult
	decodeData(t, out, &res)
	assert.Equal(t, "work", res.State)
	require.NotNil(t, res.Since)
	assert.True(t, res.Since.Equal(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)))
	assert.Nil(t, res.LastCheck)
	assert.Positive(t, res.LogBytes)
}

// ---------------------------------------------------------------------------
// summary and ratio
// ---------------------------------------------------------------------------

func TestSummary_Text(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("summary")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Wed: 42% (3h 0m)\nTue: 114% (8h 0m)\nMon: 85% (6h 0m)\nWeek overtime: 0h 0m\n", out)
}

func TestSummary_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("summary", "--format", "json")
	require.Equal(t, ExitSuccess, code)

	var res SummaryResult
	decodeData(t, out, &res)
	require.Len(t, res.Days, 3)
	assert.Equal(t, DayResult{Weekday: "Wednesday", WorkedSeconds: 3 * 3600, TargetSeconds: 7 * 3600, Percent: 42}, res.Days[0])
	assert.Equal(t, "Monday", res.Days[2].Weekday)
	assert.Equal(t, int64(0), res.BalanceSeconds)
}

func TestSummary_EmptyWeek(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("summary")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Wed: 0% (0h 0m)")
	assert.Contains(t, out, "Week undertime: 14h 0m")
}

func TestRatio(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("ratio", "--since", "today")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Work ratio since Wed Jan 03 07:00: 60.0%\n", out)
}

func TestRatio_InvalidSince(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("ratio", "--since", "yesterday")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
	assert.Contains(t, out, "--since")
}

// ---------------------------------------------------------------------------
// rewrite and corrections
// ---------------------------------------------------------------------------

func TestRewrite_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("rewrite", "--start", "10:00", "--end", "11:00", "--state", "leisure")
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "Set Wed Jan 03 10:00-11:00 to leisure (5 -> 7 entries)")

	backups, err := filepath.Glob(env.logPath() + ".bck*")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, out, backups[0])

	out, code = env.run("summary")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Wed: 28% (2h 0m)\n"), out)

	out, code = env.run("corrections")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Wed Jan 03 10:00-11:00")
	assert.Contains(t, out, "leisure")
}

func TestRewrite_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("rewrite", "--start", "2024-01-02 12:00", "--end", "2024-01-02 13:00", "--state", "email", "--format", "json")
	require.Equal(t, ExitSuccess, code, out)

	var res RewriteResult
	decodeData(t, out, &res)
	assert.Equal(t, "email", res.State)
	assert.Equal(t, 5, res.EntriesBefore)
	assert.Equal(t, 7, res.EntriesAfter)
	assert.FileExists(t, res.BackupPath)
}

func TestRewrite_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		exit int
	}{
		{"future", []string{"--start", "11:00", "--end", "12:30", "--state", "work"}, ErrCodeFutureRewrite, ExitCommandError},
		{"inverted range", []string{"--start", "11:00", "--end", "10:00", "--state", "work"}, ErrCodeInvalidRange, ExitCommandError},
		{"unknown state", []string{"--start", "10:00", "--end", "11:00", "--state", "coffee"}, ErrCodeInvalidArgs, ExitCommandError},
		{"missing state", []string{"--start", "10:00", "--end", "11:00"}, ErrCodeInvalidArgs, ExitCommandError},
		{"bad time", []string{"--start", "25:00", "--end", "11:00", "--state", "work"}, ErrCodeInvalidArgs, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seedWeek(t)

			out, code := env.run(append([]string{"rewrite"}, tt.args...)...)
			assert.Equal(t, tt.exit, code)
			assert.Contains(t, out, "Error ["+tt.code+"]")

			backups, err := filepath.Glob(env.logPath() + ".bck*")
			require.NoError(t, err)
			assert.Empty(t, backups)
		})
	}
}

func TestCorrections_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("corrections")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No corrections yet\n", out)
}

func TestCorrections_InvalidLimit(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("corrections", "--limit", "0")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func TestExport_CSVToStdout(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("export", "--as", "csv", "--since", "today")
	require.Equal(t, ExitSuccess, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "State,Work,Start,End"))
	assert.Equal(t, "idle,false,2024-01-03T07:00:00Z,2024-01-03T09:00:00Z,7200,02:00:00", lines[1])
	assert.Equal(t, "work,true,2024-01-03T09:00:00Z,2024-01-03T12:00:00Z,10800,03:00:00", lines[2])
}

func TestExport_JSONToFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)
	path := filepath.Join(env.dir, "today.json")

	out, code := env.run("export", "--as", "json", "--since", "today", "--output", path)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Exported 2 intervals to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Count     int `json:"count"`
		Intervals []struct {
			State string `json:"state"`
			Work  bool   `json:"work"`
		} `json:"intervals"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "work", doc.Intervals[1].State)
	assert.True(t, doc.Intervals[1].Work)
}

func TestExport_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("export", "--as", "xml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E004]")
}

// ---------------------------------------------------------------------------
// settings
// ---------------------------------------------------------------------------

func TestSettings_List(t *testing.T) {
	env := newTestEnv(t)

	out, code := env.run("settings")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "day_start_hour   7")
	assert.Contains(t, out, "target_friday    21600")
	assert.Contains(t, out, "work_states      work,email")
}

func TestSettings_Set(t *testing.T) {
	env := newTestEnv(t)
	env.seedWeek(t)

	out, code := env.run("settings", "set", "target_wednesday", "10800")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Set target_wednesday = 10800\n", out)

	out, code = env.run("summary")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Wed: 100% (3h 0m)\n"), out)
}

func TestSettings_SetInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"target out of range", []string{"target_friday", "99999"}},
		{"unknown key", []string{"bogus", "1"}},
		{"bad work states", []string{"work_states", "coffee"}},
		{"missing value", []string{"day_start_hour"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			out, code := env.run(append([]string{"settings", "set"}, tt.args...)...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, out, "Error [E004]")
		})
	}
}

// ---------------------------------------------------------------------------
// track
// ---------------------------------------------------------------------------

func TestTrack_RecordsSamplesUntilCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env.opts.sampler = tracker.SamplerFunc(func(context.Context) (statelog.State, error) {
		cancel()
		return statelog.StateLeisure, nil
	})

	cmd, out := env.command("track")
	cmd.SetContext(ctx)
	code := execute(cmd, env.opts)
	require.Equal(t, ExitSuccess, code, out.String())
	assert.Contains(t, out.String(), "Tracking to "+env.logPath())

	log, err := statelog.Open(env.logPath())
	require.NoError(t, err)
	last, ok, err := log.ReadLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, statelog.StateLeisure, last.State)
	assert.FileExists(t, filepath.Join(env.dir, "last_check"))
}

func TestTrack_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	cfg := fmt.Sprintf("storage:\n  dir: %s\nsampler:\n  mode: telepathy\nlogging:\n  file: \"\"\n", env.dir)
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))

	out, code := env.run("track")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E002]")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestParseWhen(t *testing.T) {
	log, err := statelog.Open(filepath.Join(t.TempDir(), "log.tsv"), statelog.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	tr := tracker.New(log, tracker.Config{Schedule: calendar.DefaultSchedule(), Location: time.UTC})

	tests := map[string]time.Time{
		"today":            time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC),
		"week":             time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC),
		"2h":               time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		"08:30":            time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC),
		"2024-01-02 09:15": time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := parseWhen(tr, "since", in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	_, err = parseWhen(tr, "since", "soon")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ErrCodeInvalidArgs, exitErr.ErrCode)
	assert.Contains(t, exitErr.Message, "--since")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"explicit code", &ExitError{Code: ExitFailure, ErrCode: ErrCodeSampler, Message: "x"}, ErrCodeSampler, ExitFailure},
		{"invalid range", fmt.Errorf("wrap: %w", statelog.ErrInvalidRange), ErrCodeInvalidRange, ExitCommandError},
		{"future rewrite", fmt.Errorf("wrap: %w", statelog.ErrFutureRewrite), ErrCodeFutureRewrite, ExitCommandError},
		{"corrupt log", &statelog.ParseError{Path: "log", Line: 3, Content: "junk", Reason: "bad timestamp"}, ErrCodeCorruptLog, ExitFailure},
		{"io", &statelog.IOError{Op: "append", Path: "log", Err: os.ErrPermission}, ErrCodeStorage, ExitFailure},
		{"out of order", fmt.Errorf("wrap: %w", statelog.ErrOutOfOrder), ErrCodeStorage, ExitFailure},
		{"command error", NewExitError(ExitCommandError, "bad"), ErrCodeInvalidArgs, ExitCommandError},
		{"exit error", NewExitError(ExitFailure, "bad"), ErrCodeGeneric, ExitFailure},
		{"plain", fmt.Errorf("boom"), ErrCodeGeneric, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.exit, exit)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrap: %w", NewExitError(ExitCommandError, "bad"))))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("boom")))
}

func TestFormatSpan(t *testing.T) {
	start := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Wed Jan 03 10:00-11:30", formatSpan(start, start.Add(90*time.Minute)))
	assert.Equal(t, "Wed Jan 03 10:00 - Thu Jan 04 09:00", formatSpan(start, start.Add(23*time.Hour)))
}
