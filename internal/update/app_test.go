package update

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskflow/internal/config"
	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/scheduler"
	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/storage"
	"github.com/sandeepkv93/taskflow/internal/timer"
)

const testUser = "user-1"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupModel(t *testing.T) (Model, *service.Planner, *fakeClock) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	planner := service.New(repo, service.WithClock(clock.Now), service.WithLogger(log))
	m := NewModel(Options{
		Planner: planner,
		UserID:  testUser,
		Timer:   config.TimerConfig{RunningTick: time.Second, IdleTick: time.Minute},
		Log:     log,
	})
	return m, planner, clock
}

func press(m Model, keys string) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return updated.(Model), cmd
}

func enter(m Model) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

// run executes one command and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func createTask(t *testing.T, p *service.Planner, in model.Task) model.Task {
	t.Helper()
	task, err := p.CreateTask(context.Background(), testUser, in)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestNewModelDefaults(t *testing.T) {
	m, _, _ := setupModel(t)
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.focusedKey() != "2024-03-10" {
		t.Fatalf("expected focus on planner day, got %s", m.focusedKey())
	}
	if m.Keys.Quit != "q" || m.Keys.Palette != ":" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.tickInterval() != time.Minute {
		t.Fatalf("idle model should tick slowly, got %s", m.tickInterval())
	}
}

func TestLoadTasksRendersTimers(t *testing.T) {
	m, p, clock := setupModel(t)
	createTask(t, p, model.Task{Title: "Standup", Date: "2024-03-10", StartTime: "09:30", EndTime: "10:00"})
	createTask(t, p, model.Task{Title: "Tomorrow", Date: "2024-03-11"})

	clock.Advance(90 * time.Second)
	m = run(t, m, m.loadTasksCmd())
	if len(m.Today.Tasks) != 1 || m.Today.Tasks[0].Title != "Standup" {
		t.Fatalf("unexpected tasks: %#v", m.Today.Tasks)
	}
	if !m.Sessions.AnyRunning() || m.tickInterval() != time.Second {
		t.Fatal("running task should switch to the fast tick")
	}

	out := m.View()
	for _, want := range []string{"Standup", "Running", "01:30", "00:28:30", "In Progress"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}
}

func TestStaleTaskLoadIgnored(t *testing.T) {
	m, _, _ := setupModel(t)
	updated, _ := m.Update(TasksLoadedMsg{Date: "2024-03-09", Tasks: []model.Task{{ID: "x", Title: "old"}}})
	next := updated.(Model)
	if len(next.Today.Tasks) != 0 {
		t.Fatalf("load for another day must be ignored: %#v", next.Today.Tasks)
	}
}

func TestStatusKeysPersistTransition(t *testing.T) {
	m, p, clock := setupModel(t)
	task := createTask(t, p, model.Task{Title: "Focus", Date: "2024-03-10"})
	m = run(t, m, m.loadTasksCmd())

	clock.Advance(90 * time.Second)
	next, cmd := press(m, "p")
	if next.Today.Tasks[0].Status != model.StatusPaused || next.Sessions.AnyRunning() {
		t.Fatalf("pause should apply locally at once: %#v", next.Today.Tasks[0])
	}
	if !strings.Contains(next.Status.Text, "pausing") {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	next = run(t, next, cmd)

	stored, err := p.GetTask(context.Background(), testUser, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != model.StatusPaused || stored.TimerPauseTime != 90 {
		t.Fatalf("pause not persisted: %#v", stored)
	}
	if next.Today.Tasks[0].TimerPauseTime != 90 || next.tickInterval() != time.Minute {
		t.Fatalf("unexpected model after persist: %#v", next.Today.Tasks[0])
	}

	same, cmd := press(next, "p")
	if cmd != nil || !strings.Contains(same.Status.Text, "already paused") {
		t.Fatalf("same-status key should be a no-op, got %+v", same.Status)
	}
}

func TestFinishedTaskCannotRestart(t *testing.T) {
	m, p, _ := setupModel(t)
	createTask(t, p, model.Task{Title: "Done", Date: "2024-03-10", Status: model.StatusFinished})
	m = run(t, m, m.loadTasksCmd())

	next, cmd := press(m, "s")
	if cmd != nil {
		t.Fatal("rejected transition must not reach storage")
	}
	if !next.Status.IsError || !errors.Is(next.LastError, timer.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", next.LastError)
	}
	if next.Today.Tasks[0].Status != model.StatusFinished {
		t.Fatalf("task should stay finished: %#v", next.Today.Tasks[0])
	}
}

func TestTickGenerations(t *testing.T) {
	m, _, clock := setupModel(t)
	start := m.now
	clock.Advance(time.Minute)

	updated, cmd := m.Update(TickMsg{Gen: m.tickGen + 1})
	next := updated.(Model)
	if cmd != nil || !next.now.Equal(start) {
		t.Fatal("stale tick chain must be ignored")
	}

	updated, cmd = next.Update(TickMsg{Gen: next.tickGen})
	next = updated.(Model)
	if cmd == nil || !next.now.Equal(clock.now) {
		t.Fatalf("tick should resample the clock, now=%s", next.now)
	}
}

func TestPaletteQuickAdd(t *testing.T) {
	m, _, _ := setupModel(t)
	m, _ = press(m, ":")
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m, _ = press(m, "add Review PR 10:00-11:00 #work")
	if m.Palette.Input != "add Review PR 10:00-11:00 #work" {
		t.Fatalf("unexpected palette input %q", m.Palette.Input)
	}

	m, cmd := enter(m)
	if m.Palette.Active {
		t.Fatal("palette should close after enter")
	}
	updated, reload := m.Update(cmd())
	m = updated.(Model)
	if !strings.Contains(m.Status.Text, `added "Review PR" on 2024-03-10`) {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}

	m = run(t, m, reload)
	if len(m.Today.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.Today.Tasks))
	}
	got := m.Today.Tasks[0]
	if got.StartTime != "10:00" || got.EndTime != "11:00" || got.Category != model.CategoryWork {
		t.Fatalf("unexpected quick-added task: %#v", got)
	}
}

func TestPaletteStatusAndGoto(t *testing.T) {
	m, p, _ := setupModel(t)
	createTask(t, p, model.Task{Title: "Write report", Date: "2024-03-10", StartTime: "08:00"})
	createTask(t, p, model.Task{Title: "Gym", Date: "2024-03-12"})
	m = run(t, m, m.loadTasksCmd())

	m, _ = press(m, ":")
	m, _ = press(m, "finish write")
	m, cmd := enter(m)
	m = run(t, m, cmd)
	if m.Today.Tasks[0].Status != model.StatusFinished {
		t.Fatalf("expected finished task, got %#v", m.Today.Tasks[0])
	}

	m, _ = press(m, ":")
	m, _ = press(m, "pause 7")
	m, cmd = enter(m)
	if cmd != nil || !m.Status.IsError {
		t.Fatalf("unknown target should fail, got %+v", m.Status)
	}

	m, _ = press(m, ":")
	m, _ = press(m, "goto 2024-03-12")
	m, cmd = enter(m)
	if m.focusedKey() != "2024-03-12" {
		t.Fatalf("expected focus on 2024-03-12, got %s", m.focusedKey())
	}
	m = run(t, m, cmd)
	if len(m.Today.Tasks) != 1 || m.Today.Tasks[0].Title != "Gym" {
		t.Fatalf("unexpected tasks after goto: %#v", m.Today.Tasks)
	}
}

func TestPaletteParseError(t *testing.T) {
	m, _, _ := setupModel(t)
	m, _ = press(m, ":")
	m, _ = press(m, "snooze all")
	m, cmd := enter(m)
	if cmd != nil || !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}

	m, _ = press(m, ":")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(Model).Palette.Active {
		t.Fatal("esc should close the palette")
	}
}

func TestCalendarNavigation(t *testing.T) {
	m, p, _ := setupModel(t)
	createTask(t, p, model.Task{Title: "Standup", Date: "2024-03-10"})
	createTask(t, p, model.Task{Title: "Review", Date: "2024-03-10", StartTime: "16:00"})

	m, cmd := press(m, "2")
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", m.CurrentView)
	}
	m = run(t, m, cmd)
	out := m.View()
	if !strings.Contains(out, "March 2024") || !strings.Contains(out, "10(2)") {
		t.Fatalf("expected month grid with counts: %q", out)
	}
	if !strings.Contains(out, "Review") {
		t.Fatalf("expected upcoming task in output: %q", out)
	}

	m, cmd = press(m, "l")
	if cmd != nil || m.Calendar.Focus.Day() != 11 {
		t.Fatalf("moving inside the month should not reload, focus=%s", m.Calendar.Focus)
	}

	m, cmd = press(m, ">")
	if m.Calendar.Focus.Month() != time.April || m.Calendar.Focus.Day() != 11 {
		t.Fatalf("unexpected focus %s", m.Calendar.Focus)
	}
	m = run(t, m, cmd)
	if m.Calendar.Month.Month != time.April {
		t.Fatalf("expected April grid, got %s", m.Calendar.Month.Month)
	}

	m, cmd = enter(m)
	if m.CurrentView != ViewToday || m.focusedKey() != "2024-04-11" || cmd == nil {
		t.Fatalf("enter should open the focused day, got %s in %s", m.focusedKey(), m.CurrentView)
	}
}

func TestShiftMonthClampsDay(t *testing.T) {
	cases := []struct {
		in    time.Time
		delta int
		want  string
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, "2024-02-29"},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), -1, "2024-02-29"},
		{time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), 1, "2025-01-15"},
	}
	for _, tc := range cases {
		if got := shiftMonth(tc.in, tc.delta).Format(model.DayLayout); got != tc.want {
			t.Fatalf("shiftMonth(%s, %d) = %s, want %s", tc.in.Format(model.DayLayout), tc.delta, got, tc.want)
		}
	}
}

func TestAlertUpdatesStatus(t *testing.T) {
	m, _, _ := setupModel(t)
	alert := scheduler.Alert{ID: "t1:end", TaskID: "t1", Title: "Standup", Kind: scheduler.AlertEnd, At: m.now}
	updated, cmd := m.Update(AlertMsg{Alert: alert})
	next := updated.(Model)
	if next.LastAlert == nil || next.LastAlert.ID != "t1:end" {
		t.Fatalf("expected last alert recorded, got %#v", next.LastAlert)
	}
	if next.Status.Text != "Standup ends now" || cmd == nil {
		t.Fatalf("unexpected status %q", next.Status.Text)
	}
	if !strings.Contains(next.View(), "[END] Standup @ 09:30") {
		t.Fatalf("expected alert notification in output: %q", next.View())
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _, _ := setupModel(t)
	next, cmd := press(m, "q")
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := setupModel(t)
	next, _ := press(m, "?")
	if !next.HelpVisible {
		t.Fatal("expected help visible")
	}
	if out := next.View(); !strings.Contains(out, "finish task") {
		t.Fatalf("expected today bindings in help: %q", out)
	}
}

func TestOverviewSummarisesPlan(t *testing.T) {
	m, planner, clock := setupModel(t)
	createTask(t, planner, model.Task{Title: "Standup", Date: "2024-03-10", StartTime: "08:00", EndTime: "08:15"})
	createTask(t, planner, model.Task{Title: "Review", Date: "2024-03-10", StartTime: "10:00", EndTime: "10:30"})
	createTask(t, planner, model.Task{Title: "Trip", Date: "2024-03-11"})

	m, cmd := press(m, "3")
	if m.CurrentView != ViewOverview {
		t.Fatalf("expected overview view, got %s", m.CurrentView)
	}
	if !strings.Contains(m.View(), "loading...") {
		t.Fatalf("expected loading placeholder: %q", m.View())
	}
	m = run(t, m, cmd)
	summary := m.Overview.Summary
	if summary.Total != 3 || summary.Today != 2 || summary.Upcoming != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.Next == nil || summary.Next.Title != "Review" {
		t.Fatalf("expected Review next, got %+v", summary.Next)
	}
	out := m.View()
	for _, want := range []string{"total     3", "today     2", "upcoming  1", "Review 10:00-10:30", "30m remaining"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q: %q", want, out)
		}
	}

	clock.Advance(30 * time.Second)
	updated, _ := m.Update(TickMsg{Gen: m.tickGen})
	m = updated.(Model)
	if m.overviewStale() {
		t.Fatal("overview should not reload before a minute has passed")
	}
	clock.Advance(time.Minute)
	updated, _ = m.Update(TickMsg{Gen: m.tickGen})
	m = updated.(Model)
	if !m.overviewStale() {
		t.Fatal("overview should be due for a reload after a minute")
	}
	if !strings.Contains(m.View(), "28m remaining") {
		t.Fatalf("next task countdown should follow the clock: %q", m.View())
	}

	m, cmd = enter(m)
	if m.CurrentView != ViewToday {
		t.Fatalf("enter should open today, got %s", m.CurrentView)
	}
	m = run(t, m, cmd)
	if task, ok := m.selectedTask(); !ok || task.Title != "Review" {
		t.Fatalf("expected next task selected, got %+v", task)
	}
}
