package update

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/taskflow/internal/calendar"
	"github.com/sandeepkv93/taskflow/internal/config"
	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/scheduler"
	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/timer"
)

type View string

const (
	ViewToday    View = "Today"
	ViewCalendar View = "Calendar"
	ViewOverview View = "Overview"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today    string
	Calendar string
	Overview string
	Palette  string
	Help     string
	Quit     string
}

// TodayState holds the tasks of the focused day in list order.
type TodayState struct {
	Date   time.Time
	Tasks  []model.Task
	Cursor int
}

type CalendarState struct {
	Focus  time.Time
	Month  service.MonthView
	Loaded bool
}

// OverviewState is the last summary loaded for the Overview view. It is
// refreshed once LoadedAt is a minute old.
type OverviewState struct {
	Summary  service.Overview
	Loaded   bool
	LoadedAt time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Options struct {
	Planner   *service.Planner
	Scheduler *scheduler.Engine
	UserID    string
	Timer     config.TimerConfig
	Log       *slog.Logger
}

type Model struct {
	CurrentView View
	Today       TodayState
	Calendar    CalendarState
	Overview    OverviewState
	Sessions    timer.Sessions
	Palette     CommandPaletteState
	HelpVisible bool
	LastAlert   *scheduler.Alert
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	planner   *service.Planner
	scheduler *scheduler.Engine
	userID    string
	ticks     config.TimerConfig
	log       *slog.Logger
	now       time.Time
	tickGen   int
	selectID  string

	commandInput textinput.Model
	helpModel    help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TasksLoadedMsg carries the tasks of Date. Loads for a day that is no
// longer focused are ignored.
type TasksLoadedMsg struct {
	Date  string
	Tasks []model.Task
	Err   error
}

type TaskCreatedMsg struct {
	Task model.Task
	Err  error
}

type TaskChangedMsg struct {
	Task model.Task
	Err  error
}

type MonthLoadedMsg struct {
	View service.MonthView
	Err  error
}

// TickMsg resamples the clock. Only the tick chain matching the model's
// current generation is honoured.
type OverviewLoadedMsg struct {
	Overview service.Overview
	Err      error
}

type TickMsg struct {
	Gen int
}

type AlertMsg struct {
	Alert scheduler.Alert
}

func NewModel(opts Options) Model {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	defaults := config.Default().Timer
	if opts.Timer.RunningTick <= 0 {
		opts.Timer.RunningTick = defaults.RunningTick
	}
	if opts.Timer.IdleTick <= 0 {
		opts.Timer.IdleTick = defaults.IdleTick
	}

	m := Model{
		CurrentView: ViewToday,
		Sessions:    timer.NewSessions(),
		Keys: GlobalKeyMap{
			Today:    "1",
			Calendar: "2",
			Overview: "3",
			Palette:  ":",
			Help:     "?",
			Quit:     "q",
		},
		planner:   opts.Planner,
		scheduler: opts.Scheduler,
		userID:    opts.UserID,
		ticks:     opts.Timer,
		log:       opts.Log,
	}
	m.now = m.clock()
	m.Today.Date = startOfDay(m.now)
	m.Calendar.Focus = m.Today.Date
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.Placeholder = "add <title> [YYYY-MM-DD] [HH:MM-HH:MM] [#category]"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 64

	m.helpModel = help.New()
}

func (m Model) clock() time.Time {
	if m.planner == nil {
		return time.Now()
	}
	return m.planner.Now()
}

func (m Model) focusedKey() string {
	return calendar.DayKey(m.Today.Date)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
