package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/calendar"
	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/scheduler"
	"github.com/sandeepkv93/taskflow/internal/timer"
	"github.com/sandeepkv93/taskflow/internal/timing"
	"github.com/sandeepkv93/taskflow/internal/urgency"
	"github.com/sandeepkv93/taskflow/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
	case "down", "j":
		if m.Today.Cursor < len(m.Today.Tasks)-1 {
			m.Today.Cursor++
		}
	case "left", "h":
		m.focusDay(m.Today.Date.AddDate(0, 0, -1))
		return m, m.loadTasksCmd()
	case "right", "l":
		m.focusDay(m.Today.Date.AddDate(0, 0, 1))
		return m, m.loadTasksCmd()
	case "t":
		m.focusDay(startOfDay(m.clock()))
		return m, m.loadTasksCmd()
	case "s":
		return m.changeSelected(model.StatusRunning)
	case "p":
		return m.changeSelected(model.StatusPaused)
	case "f":
		return m.changeSelected(model.StatusFinished)
	}
	return m, nil
}

func (m Model) changeSelected(status model.Status) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m, nil
	}
	cmd, text, err := m.requestStatus(task, status)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.Status = StatusBar{Text: text}
	return m, cmd
}

// requestStatus applies the transition to the local session table at once
// and persists it in the background. The persisted row replaces the local
// one when it arrives.
func (m *Model) requestStatus(task model.Task, status model.Status) (tea.Cmd, string, error) {
	if task.Status == status {
		return nil, fmt.Sprintf("%q is already %s", task.Title, strings.ToLower(status.Label())), nil
	}
	now := m.clock()
	next, err := m.Sessions.Apply(task, status, now)
	if err != nil {
		return nil, "", err
	}
	m.now = now
	m.replaceTask(next)
	return m.changeStatusCmd(task.ID, status), fmt.Sprintf("%s %q", progressive(status), task.Title), nil
}

func progressive(status model.Status) string {
	switch status {
	case model.StatusRunning:
		return "starting"
	case model.StatusPaused:
		return "pausing"
	default:
		return "finishing"
	}
}

func (m Model) onTasksLoaded(msg TasksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Date != m.focusedKey() {
		return m, nil
	}
	if msg.Err != nil {
		m.setError(msg.Err)
		return m, nil
	}
	m.Today.Tasks = msg.Tasks
	m.Sessions.Sync(msg.Tasks)
	if m.selectID != "" {
		for i, t := range m.Today.Tasks {
			if t.ID == m.selectID {
				m.Today.Cursor = i
			}
		}
		m.selectID = ""
	}
	if m.Today.Cursor >= len(m.Today.Tasks) {
		m.Today.Cursor = max(len(m.Today.Tasks)-1, 0)
	}
	m.now = m.clock()
	m.scheduleAlerts()
	cmd := m.restartTicks()
	return m, cmd
}

func (m Model) onTaskChanged(msg TaskChangedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError(msg.Err)
		// the optimistic session no longer matches storage
		return m, m.loadTasksCmd()
	}
	m.replaceTask(msg.Task)
	m.Sessions[msg.Task.ID] = timer.SessionFor(msg.Task)
	m.Status = StatusBar{Text: fmt.Sprintf("%q is %s", msg.Task.Title, strings.ToLower(msg.Task.Status.Label()))}
	m.scheduleAlerts()
	cmd := m.restartTicks()
	switch m.CurrentView {
	case ViewCalendar:
		return m, tea.Batch(cmd, m.loadMonthCmd())
	case ViewOverview:
		return m, tea.Batch(cmd, m.loadOverviewCmd())
	}
	return m, cmd
}

// scheduleAlerts rearms the alert engine from the tasks of the current day.
// Browsing other days leaves the armed alerts alone.
func (m *Model) scheduleAlerts() {
	if m.scheduler == nil || m.focusedKey() != calendar.DayKey(m.now) {
		return
	}
	if err := m.scheduler.Replace(scheduler.AlertsFor(m.Today.Tasks, m.now)); err != nil {
		m.log.Warn("schedule alerts", "error", err)
	}
}

func (m *Model) replaceTask(task model.Task) {
	for i := range m.Today.Tasks {
		if m.Today.Tasks[i].ID == task.ID {
			m.Today.Tasks[i] = task
			return
		}
	}
}

func (m *Model) focusDay(day time.Time) {
	m.Today.Date = startOfDay(day)
	m.Today.Tasks = nil
	m.Today.Cursor = 0
	m.Calendar.Focus = m.Today.Date
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Today.Cursor < 0 || m.Today.Cursor >= len(m.Today.Tasks) {
		return model.Task{}, false
	}
	return m.Today.Tasks[m.Today.Cursor], true
}

// findTask resolves a palette target: a 1-based list position, an exact
// title, then a title prefix. Titles match case-insensitively.
func (m Model) findTask(target string) (model.Task, bool) {
	target = strings.TrimSpace(target)
	if n, err := strconv.Atoi(target); err == nil {
		if n >= 1 && n <= len(m.Today.Tasks) {
			return m.Today.Tasks[n-1], true
		}
		return model.Task{}, false
	}
	for _, t := range m.Today.Tasks {
		if strings.EqualFold(t.Title, target) {
			return t, true
		}
	}
	lower := strings.ToLower(target)
	for _, t := range m.Today.Tasks {
		if strings.HasPrefix(strings.ToLower(t.Title), lower) {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m Model) loadTasksCmd() tea.Cmd {
	if m.planner == nil {
		return nil
	}
	planner, userID, date := m.planner, m.userID, m.focusedKey()
	return func() tea.Msg {
		tasks, err := planner.TasksForDate(context.Background(), userID, date)
		return TasksLoadedMsg{Date: date, Tasks: tasks, Err: err}
	}
}

func (m Model) createTaskCmd(in model.Task) tea.Cmd {
	if m.planner == nil {
		return nil
	}
	planner, userID := m.planner, m.userID
	return func() tea.Msg {
		task, err := planner.CreateTask(context.Background(), userID, in)
		return TaskCreatedMsg{Task: task, Err: err}
	}
}

func (m Model) changeStatusCmd(id string, status model.Status) tea.Cmd {
	if m.planner == nil {
		return nil
	}
	planner, userID := m.planner, m.userID
	return func() tea.Msg {
		task, err := planner.ChangeStatus(context.Background(), userID, id, status)
		return TaskChangedMsg{Task: task, Err: err}
	}
}

// reloadCmd refreshes the day list, plus the month grid or overview when
// one of them is showing.
func (m Model) reloadCmd() tea.Cmd {
	switch m.CurrentView {
	case ViewCalendar:
		return tea.Batch(m.loadTasksCmd(), m.loadMonthCmd())
	case ViewOverview:
		return tea.Batch(m.loadTasksCmd(), m.loadOverviewCmd())
	}
	return m.loadTasksCmd()
}

func (m Model) renderTodayView() string {
	items := make([]views.TodayItemData, 0, len(m.Today.Tasks))
	for _, t := range m.Today.Tasks {
		elapsed, ok := m.Sessions.Elapsed(t.ID, m.now)
		if !ok {
			elapsed = timer.ElapsedSeconds(t, m.now)
		}
		item := views.TodayItemData{
			ID:      t.ID,
			Title:   t.Title,
			Status:  t.Status.Label(),
			Window:  window(t),
			Elapsed: timing.FormatElapsed(elapsed),
		}
		if planned, ok := timing.PlannedDuration(t.StartTime, t.EndTime); ok {
			item.Remaining = timing.FormatCountdown(max(planned-elapsed, 0))
		}
		if u, ok := urgency.Classify(t.Date, t.StartTime, t.EndTime, m.now); ok {
			item.Urgency = views.RenderUrgency(u)
		}
		items = append(items, item)
	}
	selected := ""
	if t, ok := m.selectedTask(); ok {
		selected = t.ID
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		Date:       m.focusedKey(),
		IsToday:    m.focusedKey() == calendar.DayKey(m.now),
		Items:      items,
		SelectedID: selected,
	})
}

func (m Model) renderTaskDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	data := views.TaskDetailData{
		Title:           t.Title,
		Status:          t.Status.Label(),
		Date:            t.Date,
		Window:          window(t),
		Category:        string(t.Category),
		Priority:        string(t.Priority),
		URL:             t.URL,
		DescriptionView: views.RenderMarkdown(t.Description),
	}
	if planned, ok := timing.PlannedDuration(t.StartTime, t.EndTime); ok {
		data.Planned = timing.FormatPlanned(planned)
	}
	return views.RenderTaskDetail(data)
}

func window(t model.Task) string {
	switch {
	case t.StartTime != "" && t.EndTime != "":
		return t.StartTime + "-" + t.EndTime
	default:
		return t.StartTime
	}
}
