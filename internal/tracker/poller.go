package tracker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sadopc/worktime/internal/statelog"
)

// DefaultPollInterval is how often the current state is sampled.
const DefaultPollInterval = 100 * time.Millisecond

// Sampler reports the user's current activity state.
type Sampler interface {
	Sample(ctx context.Context) (statelog.State, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) (statelog.State, error)

func (f SamplerFunc) Sample(ctx context.Context) (statelog.State, error) {
	return f(ctx)
}

// Poller samples the activity state on every tick and records it.
type Poller struct {
	tracker  atomic.Pointer[Tracker]
	clock    Clock
	interval time.Duration
	logger   *slog.Logger
	onChange func(statelog.State)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

func WithClock(c Clock) PollerOption {
	return func(p *Poller) { p.clock = c }
}

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

// OnChange registers fn to be called after a sampled state was recorded as a
// change. fn runs on the polling goroutine.
func OnChange(fn func(statelog.State)) PollerOption {
	return func(p *Poller) { p.onChange = fn }
}

func NewPoller(t *Tracker, opts ...PollerOption) *Poller {
	p := &Poller{
		clock:    SystemClock(),
		interval: DefaultPollInterval,
		logger:   slog.New(slog.DiscardHandler),
	}
	p.tracker.Store(t)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetTracker swaps the tracker used from the next tick on, e.g. after a
// settings change produced a new one with WithConfig.
func (p *Poller) SetTracker(t *Tracker) {
	p.tracker.Store(t)
}

// Run samples immediately and then on every tick until ctx is cancelled.
// Sampling and recording errors are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context, s Sampler) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("polling started", "interval", p.interval)
	p.poll(ctx, s)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped")
			return nil
		case <-ticker.C():
			p.poll(ctx, s)
		}
	}
}

func (p *Poller) poll(ctx context.Context, s Sampler) {
	state, err := s.Sample(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("sample failed", "error", err)
		}
		return
	}
	changed, err := p.tracker.Load().CheckState(state, p.clock.Now())
	if err != nil {
		p.logger.Error("record state failed", "state", state, "error", err)
		return
	}
	if changed && p.onChange != nil {
		p.onChange(state)
	}
}
