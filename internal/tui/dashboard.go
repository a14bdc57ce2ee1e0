package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/tracker"
)

type dashboardModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	state     statelog.State
	hasState  bool
	since     time.Time
	lastCheck time.Time
	hasCheck  bool
	totals    map[statelog.State]time.Duration
	target    time.Duration
	err       error

	bar progress.Model
}

func newDashboardModel(t *tracker.Tracker) dashboardModel {
	return dashboardModel{
		tracker: t,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.bar.Width = max(10, min(60, w-20))
}

type dashboardDataMsg struct {
	state     statelog.State
	hasState  bool
	since     time.Time
	lastCheck time.Time
	hasCheck  bool
	totals    map[statelog.State]time.Duration
	target    time.Duration
	err       error
}

func (d dashboardModel) loadData() tea.Cmd {
	t := d.tracker
	return func() tea.Msg {
		var msg dashboardDataMsg
		last, ok, err := t.Log().ReadLast()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		if ok {
			msg.state, msg.hasState, msg.since = last.State, true, last.Time()
		}
		msg.lastCheck, msg.hasCheck, err = t.LastCheck()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		if msg.totals, err = t.TodayTotals(); err != nil {
			return dashboardDataMsg{err: err}
		}
		msg.target = t.Config().Schedule.Target(t.Calendar().CurrentWeekday())
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.err = msg.err
		if msg.err != nil {
			return d, nil
		}
		d.state, d.hasState, d.since = msg.state, msg.hasState, msg.since
		d.lastCheck, d.hasCheck = msg.lastCheck, msg.hasCheck
		d.totals = msg.totals
		d.target = msg.target
		return d, nil

	case StateChangedMsg, tickMsg:
		return d, d.loadData()
	}
	return d, nil
}

// worked returns today's time in work states.
func (d dashboardModel) worked() time.Duration {
	var total time.Duration
	agg := d.tracker.Aggregator()
	for s, dur := range d.totals {
		if agg.IsWork(s) {
			total += dur
		}
	}
	return total
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	if d.err != nil {
		return panelStyle.Width(contentWidth).Render(errorStyle.Render("Error: " + d.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderStatePanel(contentWidth),
		d.renderTodayPanel(contentWidth),
	)
}

func (d dashboardModel) renderStatePanel(w int) string {
	if !d.hasState {
		content := lipgloss.JoinVertical(lipgloss.Center,
			stateStyle.Width(w-6).Render(mutedStyle.Render("No history yet")),
			mutedStyle.Render("Run worktime track to start sampling"),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := d.tracker.Calendar().Now()
	current := stateStyle.Width(w - 6).Render(stateStyleFor(d.state, d.tracker.Aggregator().IsWork(d.state)))
	since := mutedStyle.Render(fmt.Sprintf("since %s (%s)",
		d.since.In(now.Location()).Format("15:04"), formatDuration(now.Sub(d.since))))

	check := mutedStyle.Render("never checked")
	if d.hasCheck {
		check = mutedStyle.Render("last check " + humanize.RelTime(d.lastCheck, now, "ago", "from now"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, current, since, check)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	worked := d.worked()
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(tracker.FormatHM(worked))
	header := fmt.Sprintf("%s  %s", title, total)

	var rows []string
	rows = append(rows, header)
	if d.target > 0 {
		ratio := worked.Seconds() / d.target.Seconds()
		rows = append(rows,
			fmt.Sprintf("  %s  %s", d.bar.ViewAs(min(ratio, 1)),
				mutedStyle.Render("of "+tracker.FormatHM(d.target))),
		)
	} else {
		rows = append(rows, mutedStyle.Render("  No target today"))
	}
	rows = append(rows, "")

	for _, s := range statelog.States {
		rows = append(rows, fmt.Sprintf("  %-10s %s", stateTitle(s), formatDuration(d.totals[s])))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
