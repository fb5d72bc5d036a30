package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/urgency"
	"github.com/sandeepkv93/taskflow/internal/views"
)

const overviewRefresh = time.Minute

func (m Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.loadOverviewCmd()
	case "enter":
		m.focusDay(startOfDay(m.clock()))
		if next := m.Overview.Summary.Next; next != nil {
			m.selectID = next.ID
		}
		m.CurrentView = ViewToday
		return m, m.loadTasksCmd()
	}
	return m, nil
}

func (m Model) onOverviewLoaded(msg OverviewLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError(msg.Err)
		return m, nil
	}
	m.Overview.Summary = msg.Overview
	m.Overview.Loaded = true
	m.Overview.LoadedAt = m.clock()
	return m, nil
}

// overviewStale reports whether the showing overview is due for a reload.
func (m Model) overviewStale() bool {
	return m.CurrentView == ViewOverview && m.Overview.Loaded && m.now.Sub(m.Overview.LoadedAt) >= overviewRefresh
}

func (m Model) loadOverviewCmd() tea.Cmd {
	if m.planner == nil {
		return nil
	}
	planner, userID := m.planner, m.userID
	return func() tea.Msg {
		overview, err := planner.Overview(context.Background(), userID)
		return OverviewLoadedMsg{Overview: overview, Err: err}
	}
}

func (m Model) renderOverviewView() string {
	summary := m.Overview.Summary
	data := views.OverviewData{
		Date:     summary.Date,
		Total:    summary.Total,
		Today:    summary.Today,
		Upcoming: summary.Upcoming,
		Loaded:   m.Overview.Loaded,
	}
	if next := summary.Next; next != nil {
		data.NextTitle = next.Title
		data.NextWindow = window(*next)
		// classified at render time so the countdown follows the ticks
		if u, ok := urgency.Classify(next.Date, next.StartTime, next.EndTime, m.now); ok {
			data.NextUrgency = views.RenderUrgency(u)
		}
	}
	return views.RenderOverview(data)
}
