package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/worktime/internal/statelog"
)

const ioregOutput = `+-o IOHIDSystem  <class IOHIDSystem, id 0x100000471, registered, matched, active, busy 0 (0 ms), retain 26>
    {
      "IOClass" = "IOHIDSystem"
      "HIDIdleTime" = 42000000000
      "IOProviderClass" = "IOResources"
    }
`

type fakeIdle struct {
	idle time.Duration
	err  error
}

func (f fakeIdle) IdleTime(context.Context) (time.Duration, error) { return f.idle, f.err }

func staticRunner(out string, err error) Runner {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestIdleSampler(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want statelog.State
	}{
		{0, statelog.StateWork},
		{5 * time.Minute, statelog.StateWork},
		{5*time.Minute + time.Second, statelog.StateIdle},
	}
	for _, tt := range tests {
		s := NewIdleSampler(fakeIdle{idle: tt.idle}, 5*time.Minute)
		got, err := s.Sample(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.idle.String())
	}
}

func TestIdleSamplerError(t *testing.T) {
	s := NewIdleSampler(fakeIdle{err: errors.New("no display")}, 0)
	_, err := s.Sample(context.Background())
	assert.ErrorContains(t, err, "no display")
}

func TestIORegSource(t *testing.T) {
	src := &IORegSource{Run: staticRunner(ioregOutput, nil)}
	idle, err := src.IdleTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, idle)

	src = &IORegSource{Run: staticRunner("nothing here\n", nil)}
	_, err = src.IdleTime(context.Background())
	assert.Error(t, err)
}

func TestXPrintIdleSource(t *testing.T) {
	src := &XPrintIdleSource{Run: staticRunner("1500\n", nil)}
	idle, err := src.IdleTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, idle)

	src = &XPrintIdleSource{Run: staticRunner("", errors.New("exec: not found"))}
	_, err = src.IdleTime(context.Background())
	assert.Error(t, err)
}

func TestCommandSampler(t *testing.T) {
	s := NewCommandSampler("focused-app-state")
	var gotArgs []string
	s.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("  Email\n"), nil
	}

	state, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, statelog.StateEmail, state)
	assert.Equal(t, []string{"sh", "-c", "focused-app-state"}, gotArgs)

	s.run = staticRunner("browsing\n", nil)
	_, err = s.Sample(context.Background())
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(ModeIdle, "", time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &IdleSampler{}, s)

	s, err = New(ModeCommand, "echo work", 0)
	require.NoError(t, err)
	assert.IsType(t, &CommandSampler{}, s)

	_, err = New(ModeCommand, " ", 0)
	assert.Error(t, err)
	_, err = New("telepathy", "", 0)
	assert.Error(t, err)
}
