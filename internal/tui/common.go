package tui

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewNow viewState = iota
	viewWeek
	viewCorrect
	viewSettings
)

var viewNames = []string{"Now", "Week", "Correct", "Settings"}

// --- Messages ---

// StateChangedMsg is sent to the program when the sampler records a new
// state.
type StateChangedMsg struct {
	State statelog.State
}

// trackerChangedMsg carries a tracker rebuilt after a settings change.
type trackerChangedMsg struct {
	tracker *tracker.Tracker
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}

// stateTitle renders a state for display, e.g. "Leisure".
func stateTitle(s statelog.State) string {
	return cases.Title(language.English).String(string(s))
}

func stateStyleFor(s statelog.State, isWork bool) string {
	switch {
	case s == statelog.StateIdle:
		return mutedStyle.Render("○ " + stateTitle(s))
	case isWork:
		return successStyle.Render("● " + stateTitle(s))
	default:
		return warningStyle.Render("● " + stateTitle(s))
	}
}
