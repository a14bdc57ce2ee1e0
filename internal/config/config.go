package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/worktime/config.yaml"

// Config holds all worktime configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Sampler SamplerConfig `yaml:"sampler"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the data files. Relative file names are resolved
// against Dir.
type StorageConfig struct {
	Dir           string `yaml:"dir"`
	LogFile       string `yaml:"log_file"`
	LastCheckFile string `yaml:"last_check_file"`
	DBFile        string `yaml:"db_file"`
}

type SamplerConfig struct {
	Mode                 string `yaml:"mode"`
	Command              string `yaml:"command"`
	PollIntervalMS       int    `yaml:"poll_interval_ms"`
	IdleThresholdSeconds int    `yaml:"idle_threshold_seconds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Sampler.Mode {
	case "idle":
	case "command":
		if c.Sampler.Command == "" {
			return fmt.Errorf("sampler.command is required in command mode")
		}
	default:
		return fmt.Errorf("sampler.mode %q must be idle or command", c.Sampler.Mode)
	}
	if c.Sampler.PollIntervalMS <= 0 {
		return fmt.Errorf("sampler.poll_interval_ms must be positive, got %d", c.Sampler.PollIntervalMS)
	}
	if c.Sampler.IdleThresholdSeconds <= 0 {
		return fmt.Errorf("sampler.idle_threshold_seconds must be positive, got %d", c.Sampler.IdleThresholdSeconds)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sampler.PollIntervalMS) * time.Millisecond
}

func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.Sampler.IdleThresholdSeconds) * time.Second
}

// LogPath returns the transition log path.
func (c *Config) LogPath() (string, error) {
	return c.resolve(c.Storage.LogFile)
}

// LastCheckPath returns the last-check marker path.
func (c *Config) LastCheckPath() (string, error) {
	return c.resolve(c.Storage.LastCheckFile)
}

// DBPath returns the settings database path.
func (c *Config) DBPath() (string, error) {
	return c.resolve(c.Storage.DBFile)
}

// LogFilePath returns the diagnostic log path. An empty file logs nowhere.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	return c.resolve(c.Logging.File)
}

func (c *Config) resolve(name string) (string, error) {
	name, err := expandPath(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := expandPath(c.Storage.Dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
