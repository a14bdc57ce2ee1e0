package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:           "~/.config/worktime",
			LogFile:       "worktime.tsv",
			LastCheckFile: "last_check",
			DBFile:        "worktime.db",
		},
		Sampler: SamplerConfig{
			Mode:                 "idle",
			Command:              "",
			PollIntervalMS:       100,
			IdleThresholdSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "worktime.log",
		},
	}
}
