package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/calendar"
	"github.com/sandeepkv93/taskflow/internal/views"
)

func (m *Model) enterCalendar() tea.Cmd {
	m.Calendar.Focus = m.Today.Date
	return m.loadMonthCmd()
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return m.moveCalendarFocus(m.Calendar.Focus.AddDate(0, 0, -1))
	case "right", "l":
		return m.moveCalendarFocus(m.Calendar.Focus.AddDate(0, 0, 1))
	case "up", "k":
		return m.moveCalendarFocus(m.Calendar.Focus.AddDate(0, 0, -7))
	case "down", "j":
		return m.moveCalendarFocus(m.Calendar.Focus.AddDate(0, 0, 7))
	case "<", "[":
		return m.moveCalendarFocus(shiftMonth(m.Calendar.Focus, -1))
	case ">", "]":
		return m.moveCalendarFocus(shiftMonth(m.Calendar.Focus, 1))
	case "t":
		return m.moveCalendarFocus(startOfDay(m.clock()))
	case "enter":
		m.focusDay(m.Calendar.Focus)
		m.CurrentView = ViewToday
		return m, m.loadTasksCmd()
	}
	return m, nil
}

// moveCalendarFocus reloads the month only when focus leaves the loaded one.
func (m Model) moveCalendarFocus(day time.Time) (tea.Model, tea.Cmd) {
	m.Calendar.Focus = startOfDay(day)
	if m.Calendar.Loaded && m.Calendar.Month.Year == day.Year() && m.Calendar.Month.Month == day.Month() {
		return m, nil
	}
	return m, m.loadMonthCmd()
}

// shiftMonth moves t by delta months, keeping the day of month where the
// target month has it and clamping to its last day otherwise.
func shiftMonth(t time.Time, delta int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}

func (m Model) loadMonthCmd() tea.Cmd {
	if m.planner == nil {
		return nil
	}
	planner, userID, focus := m.planner, m.userID, m.Calendar.Focus
	return func() tea.Msg {
		view, err := planner.MonthView(context.Background(), userID, focus.Year(), focus.Month(), nil)
		return MonthLoadedMsg{View: view, Err: err}
	}
}

func (m Model) renderCalendarView() string {
	if !m.Calendar.Loaded {
		return "calendar:\nloading " + calendar.MonthLabel(m.Calendar.Focus.Year(), m.Calendar.Focus.Month()) + "..."
	}
	month := m.Calendar.Month
	focused := calendar.DayKey(m.Calendar.Focus)
	today := calendar.DayKey(m.now)

	weeks := make([][]views.DayCellData, 0, calendar.GridCells/7)
	for i, day := range month.Days {
		if i%7 == 0 {
			weeks = append(weeks, make([]views.DayCellData, 0, 7))
		}
		cell := views.DayCellData{
			InMonth: day.InCurrentMonth,
			Count:   len(day.Tasks),
			Focused: day.Date == focused,
			IsToday: day.Date == today,
		}
		if d, ok := calendar.ParseDayKey(day.Date); ok {
			cell.Day = d.Day()
		}
		weeks[len(weeks)-1] = append(weeks[len(weeks)-1], cell)
	}
	return views.RenderMonthGrid(views.MonthGridData{
		Label:    month.Label,
		Weekdays: month.Weekdays,
		Weeks:    weeks,
		Skipped:  month.Skipped,
	})
}

func (m Model) renderUpcomingView() string {
	items := make([]views.UpcomingItemData, 0, len(m.Calendar.Month.Upcoming))
	for _, t := range m.Calendar.Month.Upcoming {
		items = append(items, views.UpcomingItemData{Date: t.Date, Time: t.StartTime, Title: t.Title})
	}
	out := views.RenderUpcoming(items)

	focused := calendar.DayKey(m.Calendar.Focus)
	for _, day := range m.Calendar.Month.Days {
		if day.Date != focused {
			continue
		}
		out += "\n\non " + focused + ":"
		if len(day.Tasks) == 0 {
			out += "\n(no tasks)"
		}
		for _, t := range day.Tasks {
			out += "\n- [" + t.Status.Label() + "] " + t.Title
		}
	}
	return out
}
