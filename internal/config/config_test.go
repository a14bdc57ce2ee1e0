package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "~/.config/worktime", cfg.Storage.Dir)
	assert.Equal(t, "worktime.tsv", cfg.Storage.LogFile)
	assert.Equal(t, "last_check", cfg.Storage.LastCheckFile)
	assert.Equal(t, "worktime.db", cfg.Storage.DBFile)
	assert.Equal(t, "idle", cfg.Sampler.Mode)
	assert.Empty(t, cfg.Sampler.Command)
	assert.Equal(t, 100, cfg.Sampler.PollIntervalMS)
	assert.Equal(t, 300, cfg.Sampler.IdleThresholdSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "worktime.log", cfg.Logging.File)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 5*time.Minute, cfg.IdleThreshold())
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
sampler:
  mode: "command"
  command: "focused-app-state"
  poll_interval_ms: 500
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "command", cfg.Sampler.Mode)
	assert.Equal(t, "focused-app-state", cfg.Sampler.Command)
	assert.Equal(t, 500, cfg.Sampler.PollIntervalMS)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, 300, cfg.Sampler.IdleThresholdSeconds)
	assert.Equal(t, "worktime.tsv", cfg.Storage.LogFile)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unknown mode":          "sampler:\n  mode: telepathy\n",
		"command without cmd":   "sampler:\n  mode: command\n",
		"zero poll interval":    "sampler:\n  poll_interval_ms: 0\n",
		"negative idle":         "sampler:\n  idle_threshold_seconds: -1\n",
		"unknown logging level": "logging:\n  level: chatty\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

			_, err := Load(cfgPath)
			assert.Error(t, err)
		})
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "idle", cfg.Sampler.Mode)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
storage:
  dir: "/var/lib/worktime"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/worktime", cfg.Storage.Dir)
	// Other fields remain defaults
	assert.Equal(t, "worktime.db", cfg.Storage.DBFile)
}

func TestStoragePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Dir = "/data/worktime"
	cfg.Storage.DBFile = "/elsewhere/settings.db"

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/worktime/worktime.tsv", logPath)

	markerPath, err := cfg.LastCheckPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/worktime/last_check", markerPath)

	dbPath, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/settings.db", dbPath)

	cfg.Logging.File = ""
	logFile, err := cfg.LogFilePath()
	require.NoError(t, err)
	assert.Empty(t, logFile)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/.config/worktime")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/worktime"), got)

	got, err = expandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}
