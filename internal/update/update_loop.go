package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/scheduler"
	"github.com/sandeepkv93/taskflow/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTasksCmd(),
		tickCmd(m.tickGen, m.tickInterval()),
		m.waitForAlertCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case m.Keys.Palette:
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			cmd := m.commandInput.Focus()
			return m, cmd
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Calendar:
			m.CurrentView = ViewCalendar
			cmd := m.enterCalendar()
			return m, cmd
		case m.Keys.Overview:
			m.CurrentView = ViewOverview
			return m, m.loadOverviewCmd()
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewCalendar:
			return m.handleCalendarKey(typed)
		case ViewOverview:
			return m.handleOverviewKey(typed)
		}
		return m.handleTodayKey(typed)
	case SwitchViewMsg:
		switch typed.View {
		case ViewToday:
			m.CurrentView = ViewToday
		case ViewCalendar:
			m.CurrentView = ViewCalendar
			cmd := m.enterCalendar()
			return m, cmd
		case ViewOverview:
			m.CurrentView = ViewOverview
			return m, m.loadOverviewCmd()
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.setError(typed.Err)
		return m, nil
	case TasksLoadedMsg:
		return m.onTasksLoaded(typed)
	case TaskCreatedMsg:
		if typed.Err != nil {
			m.setError(typed.Err)
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("added %q on %s", typed.Task.Title, typed.Task.Date)}
		return m, m.reloadCmd()
	case TaskChangedMsg:
		return m.onTaskChanged(typed)
	case MonthLoadedMsg:
		if typed.Err != nil {
			m.setError(typed.Err)
			return m, nil
		}
		m.Calendar.Month = typed.View
		m.Calendar.Loaded = true
		return m, nil
	case OverviewLoadedMsg:
		return m.onOverviewLoaded(typed)
	case TickMsg:
		if typed.Gen != m.tickGen {
			return m, nil
		}
		m.now = m.clock()
		next := tickCmd(m.tickGen, m.tickInterval())
		if m.overviewStale() {
			return m, tea.Batch(next, m.loadOverviewCmd())
		}
		return m, next
	case AlertMsg:
		alert := typed.Alert
		m.LastAlert = &alert
		m.now = m.clock()
		verb := "starts"
		if alert.Kind == scheduler.AlertEnd {
			verb = "ends"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s %s now", alert.Title, verb)}
		m.log.Debug("alert fired", "task_id", alert.TaskID, "kind", alert.Kind)
		return m, tea.Batch(m.loadTasksCmd(), m.waitForAlertCmd())
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var left, right string
	switch m.CurrentView {
	case ViewCalendar:
		left = m.renderCalendarView()
		right = m.renderUpcomingView()
	case ViewOverview:
		left = m.renderOverviewView()
		right = m.renderTodayView()
	default:
		left = m.renderTodayView()
		right = m.renderTaskDetail()
	}
	right += m.renderHelpIfVisible()

	notification := ""
	if m.LastAlert != nil {
		notification = views.RenderNotification(string(m.LastAlert.Kind),
			fmt.Sprintf("%s @ %s", m.LastAlert.Title, m.LastAlert.At.Format("15:04")))
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("taskflow | view: %s | %s", m.CurrentView, m.now.Format("Mon Jan 2 15:04:05")),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		IsError:      m.Status.IsError,
		Palette:      views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s today | %s calendar | %s overview | %s cmd | %s help | %s quit",
			m.Keys.Today, m.Keys.Calendar, m.Keys.Overview, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
}

// tickInterval is the fast cadence while any timer is running, the slow one
// otherwise.
func (m Model) tickInterval() time.Duration {
	if m.Sessions.AnyRunning() {
		return m.ticks.RunningTick
	}
	return m.ticks.IdleTick
}

// restartTicks abandons the current tick chain and starts one at the
// cadence the sessions now call for.
func (m *Model) restartTicks() tea.Cmd {
	m.tickGen++
	return tickCmd(m.tickGen, m.tickInterval())
}

func tickCmd(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return TickMsg{Gen: gen} })
}

func (m Model) waitForAlertCmd() tea.Cmd {
	if m.scheduler == nil {
		return nil
	}
	ch := m.scheduler.C()
	return func() tea.Msg {
		a, ok := <-ch
		if !ok {
			return nil
		}
		return AlertMsg{Alert: a}
	}
}
