package service

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/taskflow/internal/calendar"
	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/storage"
	"github.com/sandeepkv93/taskflow/internal/timer"
	"github.com/sandeepkv93/taskflow/internal/timing"
	"github.com/sandeepkv93/taskflow/internal/urgency"
)

// TimerView is everything a client shows for one task on a tick.
type TimerView struct {
	TaskID           string           `json:"taskId"`
	Status           model.Status     `json:"status"`
	ElapsedSeconds   int64            `json:"elapsedSeconds"`
	Elapsed          string           `json:"elapsed"`
	RemainingSeconds *int64           `json:"remainingSeconds"`
	Remaining        string           `json:"remaining,omitempty"`
	Planned          string           `json:"planned,omitempty"`
	Urgency          *urgency.Urgency `json:"urgency,omitempty"`
}

// BuildTimerView derives the display values for task at now.
func BuildTimerView(task model.Task, now time.Time) TimerView {
	elapsed := timer.ElapsedSeconds(task, now)
	v := TimerView{
		TaskID:         task.ID,
		Status:         task.Status,
		ElapsedSeconds: elapsed,
		Elapsed:        timing.FormatElapsed(elapsed),
	}
	if remaining, ok := timer.RemainingSeconds(task, now); ok {
		v.RemainingSeconds = &remaining
		v.Remaining = timing.FormatCountdown(remaining)
	}
	if planned, ok := timing.PlannedDuration(task.StartTime, task.EndTime); ok {
		v.Planned = timing.FormatPlanned(planned)
	}
	if u, ok := urgency.Classify(task.Date, task.StartTime, task.EndTime, now); ok {
		v.Urgency = &u
	}
	return v
}

func (p *Planner) Timer(ctx context.Context, userID, id string) (TimerView, error) {
	task, err := p.GetTask(ctx, userID, id)
	if err != nil {
		return TimerView{}, err
	}
	return BuildTimerView(task, p.now()), nil
}

type DayView struct {
	Date           string       `json:"date"`
	InCurrentMonth bool         `json:"inCurrentMonth"`
	Tasks          []model.Task `json:"tasks"`
}

type MonthView struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	Label     string       `json:"label"`
	WeekStart time.Weekday `json:"weekStart"`
	Weekdays  []string     `json:"weekdays"`
	Days      []DayView    `json:"days"`
	Upcoming  []model.Task `json:"upcoming"`
	// Skipped counts tasks left out of the grid for an unusable date.
	Skipped int `json:"skipped"`
}

// MonthView builds the 42-day grid for year/month and buckets the user's
// tasks into it. weekStart overrides the user's setting when non-nil.
func (p *Planner) MonthView(ctx context.Context, userID string, year int, month time.Month, weekStart *time.Weekday) (MonthView, error) {
	first := p.WeekStartFor(ctx, userID)
	if weekStart != nil {
		first = *weekStart
	}
	grid := calendar.BuildMonthGrid(year, month, first)
	tasks, err := p.repo.ListTasks(ctx, storage.TaskListFilter{
		UserID: userID,
		From:   calendar.DayKey(grid.Start()),
		To:     calendar.DayKey(grid.End()),
	})
	if err != nil {
		return MonthView{}, err
	}
	return assembleMonth(grid, tasks, p.now(), p.upcomingLimit), nil
}

func assembleMonth(grid calendar.Grid, tasks []model.Task, now time.Time, upcomingLimit int) MonthView {
	idx := calendar.BuildDateIndex(tasks, func(t model.Task) string { return t.Date })
	view := MonthView{
		Year:      grid.Year,
		Month:     grid.Month,
		Label:     grid.Label(),
		WeekStart: grid.FirstDay,
		Weekdays:  calendar.Weekdays(grid.FirstDay),
		Days:      make([]DayView, 0, calendar.GridCells),
		Skipped:   idx.Dropped(),
	}
	for _, cell := range grid.Cells {
		dayTasks := idx.Get(cell.Key)
		if dayTasks == nil {
			dayTasks = []model.Task{}
		}
		view.Days = append(view.Days, DayView{Date: cell.Key, InCurrentMonth: cell.InCurrentMonth, Tasks: dayTasks})
	}
	view.Upcoming = calendar.Upcoming(tasks, now, upcomingLimit, func(t model.Task) (time.Time, bool) {
		if t.Status == model.StatusFinished {
			return time.Time{}, false
		}
		return scheduledAt(t, now.Location())
	})
	return view
}

// WeekStartFor is the user's preferred first weekday, or the planner
// default when the user is unknown.
func (p *Planner) WeekStartFor(ctx context.Context, userID string) time.Weekday {
	user, err := p.repo.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("load user settings", "user_id", userID, "error", err)
		}
		return p.weekStart
	}
	return user.Settings.WeekStart()
}

// scheduledAt is the task's date and start time as an instant in loc.
// Untimed tasks sit at midnight; a malformed start time is not scheduled.
func scheduledAt(t model.Task, loc *time.Location) (time.Time, bool) {
	if t.StartTime == "" {
		return timing.ParseDay(t.Date, loc)
	}
	w, ok := timing.WindowBounds(t.Date, t.StartTime, "", loc)
	return w.Start, ok
}

// Overview summarises the user's whole plan: how many tasks exist, how
// many fall on today and after today, and the next timed task still ahead
// today.
type Overview struct {
	Date        string           `json:"date"`
	Total       int              `json:"total"`
	Today       int              `json:"today"`
	Upcoming    int              `json:"upcoming"`
	Next        *model.Task      `json:"next,omitempty"`
	NextUrgency *urgency.Urgency `json:"nextUrgency,omitempty"`
}

func (p *Planner) Overview(ctx context.Context, userID string) (Overview, error) {
	tasks, err := p.repo.ListTasks(ctx, storage.TaskListFilter{UserID: userID})
	if err != nil {
		return Overview{}, err
	}
	return Summarize(tasks, p.now()), nil
}

// Summarize computes the overview of tasks at now. Dates are compared as
// day keys in now's location; tasks with an unusable date count only
// toward the total.
func Summarize(tasks []model.Task, now time.Time) Overview {
	today := calendar.DayKey(now)
	out := Overview{Date: today, Total: len(tasks)}
	var todays []model.Task
	for _, t := range tasks {
		if !model.ValidDay(t.Date) {
			continue
		}
		switch {
		case t.Date == today:
			out.Today++
			todays = append(todays, t)
		case t.Date > today:
			out.Upcoming++
		}
	}
	next := calendar.Upcoming(todays, now, 1, func(t model.Task) (time.Time, bool) {
		w, ok := timing.WindowBounds(t.Date, t.StartTime, t.EndTime, now.Location())
		if !ok || !w.Start.After(now) {
			return time.Time{}, false
		}
		return w.Start, true
	})
	if len(next) == 1 {
		out.Next = &next[0]
		if u, ok := urgency.Classify(next[0].Date, next[0].StartTime, next[0].EndTime, now); ok {
			out.NextUrgency = &u
		}
	}
	return out
}
