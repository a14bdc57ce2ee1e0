// Package tui is the interactive overlay: the current state, the week
// against its targets, history corrections and schedule settings.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/export"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/tracker"
)

// App is the root Bubble Tea model.
type App struct {
	tracker *tracker.Tracker
	store   *store.Store
	poller  *tracker.Poller
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	correct   correctModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp returns the overlay for t. s holds settings and the correction
// trail and may be nil. When p is set it is switched to the new tracker
// after a settings change.
func NewApp(t *tracker.Tracker, s *store.Store, p *tracker.Poller) App {
	h := help.New()
	h.ShowAll = false

	return App{
		tracker:    t,
		store:      s,
		poller:     p,
		activeView: viewNow,
		dashboard:  newDashboardModel(t),
		reports:    newReportsModel(t),
		correct:    newCorrectModel(t, s),
		settings:   newSettingsModel(t, s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.correct.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewNow
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewWeek
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCorrect
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.activeView == viewNow {
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case StateChangedMsg:
		a.status = "Now " + stateTitle(msg.State)
		a.statusErr = false
		var c1, c2 tea.Cmd
		a.dashboard, c1 = a.dashboard.update(msg)
		a.reports, c2 = a.reports.update(msg)
		return a, tea.Batch(c1, c2)

	case trackerChangedMsg:
		a.setTracker(msg.tracker)
		a.status = "Settings saved"
		a.statusErr = false
		return a, tea.Batch(a.dashboard.loadData(), a.reports.refresh())

	case correctionDoneMsg:
		a.status = fmt.Sprintf("%s to %s is now %s (backup %s)",
			msg.start.Format("15:04"), msg.end.Format("15:04"), stateTitle(msg.state),
			filepath.Base(msg.result.BackupPath))
		a.statusErr = false
		var cmd tea.Cmd
		a.correct, cmd = a.correct.update(msg)
		return a, tea.Batch(cmd, a.dashboard.loadData(), a.reports.refresh())

	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil

	case reportsDataMsg:
		a.reports, _ = a.reports.update(msg)
		return a, nil

	case correctionsDataMsg:
		a.correct, _ = a.correct.update(msg)
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// setTracker switches every view and the poller to t.
func (a *App) setTracker(t *tracker.Tracker) {
	a.tracker = t
	a.dashboard.tracker = t
	a.reports.tracker = t
	a.correct.tracker = t
	a.settings.tracker = t
	if a.poller != nil {
		a.poller.SetTracker(t)
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewNow:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewWeek:
		a.reports, cmd = a.reports.update(msg)
	case viewCorrect:
		a.correct, cmd = a.correct.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCorrect:
		return a.correct.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewNow:
		return a.dashboard.loadData()
	case viewWeek:
		return a.reports.refresh()
	case viewCorrect:
		return a.correct.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewNow:
		content = a.dashboard.view()
	case viewWeek:
		content = a.reports.view()
	case viewCorrect:
		content = a.correct.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("worktime")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	indicator := ""
	if a.dashboard.hasState {
		indicator = " " + stateStyleFor(a.dashboard.state, a.tracker.Aggregator().IsWork(a.dashboard.state))
	}

	left := footerStyle.Render(helpView)
	right := indicator + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export this week")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	t := a.tracker
	return func() tea.Msg {
		ivs, err := weekIntervals(t)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		dateStr := t.Calendar().Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("worktime-export-%s.csv", dateStr))
			if err := export.ToCSV(ivs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("worktime-export-%s.json", dateStr))
			if err := export.ToJSON(ivs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

func weekIntervals(t *tracker.Tracker) ([]export.Interval, error) {
	cal := t.Calendar()
	start := cal.WeekStart()
	if !cal.Now().After(start) {
		return nil, nil
	}
	entries, err := t.History(start)
	if err != nil {
		return nil, err
	}
	return export.Intervals(entries, t.Aggregator().IsWork, cal.Now().Location()), nil
}
