package tui

import (
	"errors"
	"fmt"
	"path/filepath"
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

const recentCorrections = 5

type correctModel struct {
	tracker *tracker.Tracker
	store   *store.Store
	width   int
	height  int

	corrections []store.Correction

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formStart *string
	formEnd   *string
	formState *string
}

func newCorrectModel(t *tracker.Tracker, s *store.Store) correctModel {
	start, end, state := "", "", string(statelog.StateWork)
	return correctModel{
		tracker:   t,
		store:     s,
		formStart: &start,
		formEnd:   &end,
		formState: &state,
	}
}

func (c *correctModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type correctionsDataMsg struct {
	corrections []store.Correction
}

type correctionDoneMsg struct {
	start, end time.Time
	state      statelog.State
	result     statelog.RewriteResult
}

func (c correctModel) refresh() tea.Cmd {
	if c.store == nil {
		return nil
	}
	s := c.store
	return func() tea.Msg {
		corrections, _ := s.ListCorrections(store.CorrectionFilter{Limit: recentCorrections})
		return correctionsDataMsg{corrections: corrections}
	}
}

func (c correctModel) update(msg tea.Msg) (correctModel, tea.Cmd) {
	switch msg := msg.(type) {
	case correctionsDataMsg:
		c.corrections = msg.corrections
		return c, nil
	case correctionDoneMsg:
		return c, c.refresh()
	}

	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return c.showForm()
		}
	}
	return c, nil
}

func (c correctModel) validTime(s string) error {
	_, err := calendar.ParseTime(s, c.tracker.Calendar().Now())
	return err
}

func (c correctModel) showForm() (correctModel, tea.Cmd) {
	now := c.tracker.Calendar().Now()
	*c.formStart = now.Add(-time.Hour).Format("15:04")
	*c.formEnd = now.Add(-time.Minute).Format("15:04")

	options := make([]huh.Option[string], 0, len(statelog.States))
	for _, s := range statelog.States {
		options = append(options, huh.NewOption(stateTitle(s), string(s)))
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From").
				Description("HH:MM, YYYY-MM-DD HH:MM or a duration ago").
				Value(c.formStart).Validate(c.validTime),
			huh.NewInput().Title("To").Value(c.formEnd).Validate(c.validTime),
			huh.NewSelect[string]().Title("State").Options(options...).Value(c.formState),
		).Title("Correct history"),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c correctModel) updateForm(msg tea.Msg) (correctModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		return c, c.apply(*c.formStart, *c.formEnd, *c.formState)
	}

	return c, cmd
}

func (c correctModel) apply(rawStart, rawEnd, rawState string) tea.Cmd {
	t := c.tracker
	return func() tea.Msg {
		now := t.Calendar().Now()
		start, err := calendar.ParseTime(rawStart, now)
		if err != nil {
			return statusMsg{text: "Correction: " + err.Error(), isError: true}
		}
		end, err := calendar.ParseTime(rawEnd, now)
		if err != nil {
			return statusMsg{text: "Correction: " + err.Error(), isError: true}
		}
		state, err := statelog.ParseState(rawState)
		if err != nil {
			return statusMsg{text: "Correction: " + err.Error(), isError: true}
		}
		res, err := t.RewriteHistory(start, end, state)
		if err != nil {
			return statusMsg{text: correctionError(err), isError: true}
		}
		return correctionDoneMsg{start: start, end: end, state: state, result: res}
	}
}

func correctionError(err error) string {
	switch {
	case errors.Is(err, statelog.ErrInvalidRange):
		return "Correction: start must be before end"
	case errors.Is(err, statelog.ErrFutureRewrite):
		return "Correction: cannot rewrite the future"
	}
	return "Correction: " + err.Error()
}

func (c correctModel) view() string {
	w := c.width - 4
	title := titleStyle.Render("Correct history")

	if c.formActive && c.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")
	if len(c.corrections) == 0 {
		rows = append(rows, mutedStyle.Render("  No corrections yet"))
	}
	loc := c.tracker.Calendar().Now().Location()
	for _, cr := range c.corrections {
		rows = append(rows, fmt.Sprintf("  %s  %s → %s  %-8s %s",
			cr.AppliedAt.In(loc).Format("Jan 02 15:04"),
			cr.Start.In(loc).Format("15:04"),
			cr.End.In(loc).Format("15:04"),
			stateTitle(statelog.State(cr.State)),
			mutedStyle.Render(filepath.Base(cr.BackupPath)),
		))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to relabel a period"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
