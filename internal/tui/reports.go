package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/tracker"
)

type reportsModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	days    []tracker.DaySummary
	balance time.Duration
	err     error

	chart barchart.Model
	bar   progress.Model
}

func newReportsModel(t *tracker.Tracker) reportsModel {
	return reportsModel{
		tracker: t,
		chart:   barchart.New(60, 12),
		bar:     progress.New(progress.WithSolidFill(string(colorSuccess)), progress.WithWidth(30), progress.WithoutPercentage()),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.bar.Width = max(10, min(40, w/3))
}

type reportsDataMsg struct {
	days    []tracker.DaySummary
	balance time.Duration
	err     error
}

func (r reportsModel) refresh() tea.Cmd {
	t := r.tracker
	return func() tea.Msg {
		days, err := t.DaySummaries()
		if err != nil {
			return reportsDataMsg{err: err}
		}
		balance, err := t.WeekBalance()
		if err != nil {
			return reportsDataMsg{err: err}
		}
		return reportsDataMsg{days: days, balance: balance}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.err = msg.err
		if msg.err == nil {
			r.days = msg.days
			r.balance = msg.balance
		}
		r.buildChart()
		return r, nil

	case StateChangedMsg:
		return r, r.refresh()
	}
	return r, nil
}

// buildChart draws one bar per weekday: work up to the target, overtime on
// top and the missing part of the target in a subtle color.
func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	worked := make(map[calendar.Weekday]time.Duration, len(r.days))
	for _, d := range r.days {
		worked[d.Weekday] = d.Worked
	}

	sched := r.tracker.Config().Schedule
	var bars []barchart.BarData
	for _, w := range calendar.Weekdays {
		target := sched.Target(w)
		done := worked[w]
		within := min(done, target)
		values := []barchart.BarValue{
			{Name: "worked", Value: within.Hours(), Style: lipgloss.NewStyle().Foreground(colorSuccess)},
		}
		if done > target {
			values = append(values, barchart.BarValue{
				Name: "overtime", Value: (done - target).Hours(), Style: lipgloss.NewStyle().Foreground(colorAccent),
			})
		} else {
			values = append(values, barchart.BarValue{
				Name: "missing", Value: (target - done).Hours(), Style: lipgloss.NewStyle().Foreground(colorSubtle),
			})
		}
		bars = append(bars, barchart.BarData{Label: w.Short(), Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	weekStart := r.tracker.Calendar().WeekStart()
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("This week"), "  ",
		mutedStyle.Render("since "+weekStart.Format("Mon Jan 02 15:04")),
	)

	if r.err != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", errorStyle.Render("Error: "+r.err.Error())),
		)
	}

	legend := fmt.Sprintf("  %s worked  %s overtime  %s missing",
		successStyle.Render("●"), accentStyle.Render("●"), lipgloss.NewStyle().Foreground(colorSubtle).Render("●"))

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderDays(), "", r.renderBalance(),
		),
	)
}

func (r reportsModel) renderDays() string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No data for this week")
	}

	var rows []string
	for _, d := range r.days {
		bar := mutedStyle.Render(strings.Repeat("·", r.bar.Width))
		if d.Target > 0 {
			bar = r.bar.ViewAs(min(d.Ratio, 1))
		}
		rows = append(rows, fmt.Sprintf("  %s %s %4d%%  %s / %s",
			d.Weekday.Short(), bar, d.Percent(), tracker.FormatHM(d.Worked), tracker.FormatHM(d.Target)))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderBalance() string {
	line := "  " + tracker.BalanceLine(r.balance)
	if r.balance < 0 {
		return warningStyle.Render(line)
	}
	return successStyle.Render(line)
}
