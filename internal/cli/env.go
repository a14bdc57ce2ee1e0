package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sadopc/worktime/internal/config"
	"github.com/sadopc/worktime/internal/logging"
	"github.com/sadopc/worktime/internal/sampler"
	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/tracker"
)

// env is everything a command needs, opened from the config file.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	log     *statelog.Store
	store   *store.Store
	tracker *tracker.Tracker

	logCloser io.Closer
}

func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := config.LoadOrCreateAt(opts.ConfigPath)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "load config", Err: err}
	}

	logPath, err := cfg.LogFilePath()
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "resolve log file", Err: err}
	}
	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, logCloser, err := logging.OpenFile(logPath, level)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "open diagnostic log", Err: err}
	}
	e := &env{cfg: cfg, logger: logger, logCloser: logCloser}

	logFile, err := cfg.LogPath()
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "resolve log path", Err: err}
	}
	markerFile, err := cfg.LastCheckPath()
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "resolve last check path", Err: err}
	}
	dbFile, err := cfg.DBPath()
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "resolve database path", Err: err}
	}

	e.log, err = statelog.Open(logFile, statelog.WithClock(opts.now), statelog.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store, err = store.New(dbFile)
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "open database", Err: err}
	}

	sched, err := e.store.LoadSchedule()
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "load schedule", Err: err}
	}
	states, err := e.store.LoadWorkStates()
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitFailure, ErrCode: ErrCodeStorage, Message: "load work states", Err: err}
	}

	e.tracker = tracker.New(e.log,
		tracker.Config{Schedule: sched, WorkStates: states, Location: opts.location},
		tracker.WithMarker(statelog.NewMarker(markerFile)),
		tracker.WithRecorder(e.store),
		tracker.WithLogger(logger),
	)
	logger.Debug("environment ready", "log", logFile, "db", dbFile)
	return e, nil
}

// sampler returns the configured activity sampler.
func (e *env) sampler(opts *RootOptions) (tracker.Sampler, error) {
	if opts.sampler != nil {
		return opts.sampler, nil
	}
	s, err := sampler.New(e.cfg.Sampler.Mode, e.cfg.Sampler.Command, e.cfg.IdleThreshold())
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeSampler, Message: "build sampler", Err: err}
	}
	return s, nil
}

func (e *env) Close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	return errors.Join(errs...)
}
