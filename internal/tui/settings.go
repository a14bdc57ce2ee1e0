package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/statelog"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/tracker"
)

type settingsModel struct {
	tracker *tracker.Tracker
	store   *store.Store
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dayStart   *string
	workStates *string
	targets    [7]*string
}

func newSettingsModel(t *tracker.Tracker, s *store.Store) settingsModel {
	ds, ws := "", ""
	m := settingsModel{
		tracker:    t,
		store:      s,
		dayStart:   &ds,
		workStates: &ws,
	}
	for i := range m.targets {
		v := ""
		m.targets[i] = &v
	}
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	if s.store == nil {
		return nil
	}
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(settingsDataMsg); ok {
		s.settings = msg.settings
		return s, nil
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			if s.store == nil {
				return s, func() tea.Msg {
					return statusMsg{text: "Settings are read-only without a database", isError: true}
				}
			}
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cfg := s.tracker.Config()
	*s.dayStart = strconv.Itoa(cfg.Schedule.DayStartHour)
	*s.workStates = joinStates(cfg.WorkStates)
	for _, w := range calendar.Weekdays {
		*s.targets[w] = strconv.FormatFloat(cfg.Schedule.Target(w).Hours(), 'f', -1, 64)
	}

	days := make([]huh.Field, 0, len(calendar.Weekdays))
	for _, w := range calendar.Weekdays {
		days = append(days, huh.NewInput().Title(w.String()+" (hours)").Value(s.targets[w]).Validate(validHours))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day starts at (hour)").Value(s.dayStart).
				Validate(func(v string) error { return store.ValidateSetting(store.KeyDayStartHour, v) }),
			huh.NewInput().Title("Work states").Description("comma separated, e.g. work,email").
				Value(s.workStates).
				Validate(func(v string) error { return store.ValidateSetting(store.KeyWorkStates, v) }),
		).Title("General"),
		huh.NewGroup(days...).Title("Daily targets"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Batch(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

// saveSettings stores the form and hands back a tracker using the new
// configuration.
func (s settingsModel) saveSettings() tea.Cmd {
	t, st := s.tracker, s.store
	dayStart, workStates := *s.dayStart, *s.workStates
	var targets [7]string
	for i, p := range s.targets {
		targets[i] = *p
	}

	return func() tea.Msg {
		cfg := t.Config()
		sched := cfg.Schedule

		h, err := strconv.Atoi(strings.TrimSpace(dayStart))
		if err != nil {
			return statusMsg{text: "Settings: " + err.Error(), isError: true}
		}
		sched.DayStartHour = h
		for _, w := range calendar.Weekdays {
			d, err := parseHours(targets[w])
			if err != nil {
				return statusMsg{text: "Settings: " + err.Error(), isError: true}
			}
			sched = sched.WithTarget(w, d)
		}
		if err := st.SaveSchedule(sched); err != nil {
			return statusMsg{text: "Settings: " + err.Error(), isError: true}
		}
		if err := st.SetSetting(store.KeyWorkStates, workStates); err != nil {
			return statusMsg{text: "Settings: " + err.Error(), isError: true}
		}
		states, err := st.LoadWorkStates()
		if err != nil {
			return statusMsg{text: "Settings: " + err.Error(), isError: true}
		}

		cfg.Schedule = sched
		cfg.WorkStates = states
		return trackerChangedMsg{tracker: t.WithConfig(cfg)}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch {
	case k == store.KeyDayStartHour:
		if h, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%02d:00", h)
		}
	case strings.HasPrefix(k, "target_"):
		if secs, err := strconv.Atoi(v); err == nil {
			return formatHours(time.Duration(secs) * time.Second)
		}
	}
	return v
}

func joinStates(states []statelog.State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}

func parseHours(s string) (time.Duration, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours %q", s)
	}
	if hours < 0 || hours > 24 {
		return 0, fmt.Errorf("hours must be between 0 and 24, got %q", s)
	}
	return time.Duration(hours * float64(time.Hour)).Round(time.Second), nil
}

func validHours(s string) error {
	_, err := parseHours(s)
	return err
}
