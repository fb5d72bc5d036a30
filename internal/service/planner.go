// Package service composes the timing core with a storage.Repository: it
// creates tasks, routes status changes through the timer state machine and
// assembles timer and month views for the REST and terminal clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/storage"
	"github.com/sandeepkv93/taskflow/internal/timer"
)

var ErrInvalidInput = errors.New("service: invalid input")

const projectListLimit = 200

type Planner struct {
	repo          storage.Repository
	now           func() time.Time
	log           *slog.Logger
	weekStart     time.Weekday
	upcomingLimit int
}

type Option func(*Planner)

func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// WithWeekStart sets the grid's first column when the user has no preference.
func WithWeekStart(d time.Weekday) Option {
	return func(p *Planner) { p.weekStart = d }
}

func WithUpcomingLimit(n int) Option {
	return func(p *Planner) { p.upcomingLimit = n }
}

func New(repo storage.Repository, opts ...Option) *Planner {
	p := &Planner{
		repo:          repo,
		now:           time.Now,
		log:           slog.Default(),
		weekStart:     time.Monday,
		upcomingLimit: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Now() time.Time {
	return p.now()
}

// CreateTask assigns an id and enters the task's initial timer state.
func (p *Planner) CreateTask(ctx context.Context, userID string, in model.Task) (model.Task, error) {
	now := p.now()
	in.ID = newID()
	in.UserID = userID
	in.ApplyDefaults()
	if !in.Status.IsValid() {
		return model.Task{}, invalid(fmt.Errorf("%w: %q", model.ErrInvalidStatus, in.Status))
	}
	in = timer.Begin(in, now)
	in.CreatedAt = now.UTC()
	in.UpdatedAt = in.CreatedAt
	if err := in.Validate(); err != nil {
		return model.Task{}, invalid(err)
	}
	if err := p.repo.CreateTask(ctx, in); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	p.log.Info("task created", "task_id", in.ID, "user_id", userID, "date", in.Date, "status", in.Status)
	return in, nil
}

// GetTask loads a task owned by userID. Another user's task reads as not found.
func (p *Planner) GetTask(ctx context.Context, userID, id string) (model.Task, error) {
	task, err := p.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.UserID != userID {
		return model.Task{}, storage.ErrNotFound
	}
	return task, nil
}

func (p *Planner) ListTasks(ctx context.Context, userID string, filter storage.TaskListFilter) ([]model.Task, error) {
	for _, day := range []string{filter.Date, filter.From, filter.To} {
		if day != "" && !model.ValidDay(day) {
			return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidDate, day))
		}
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidStatus, filter.Status))
	}
	filter.UserID = userID
	return p.repo.ListTasks(ctx, filter)
}

func (p *Planner) TasksForDate(ctx context.Context, userID, date string) ([]model.Task, error) {
	if date == "" {
		return nil, invalid(fmt.Errorf("%w: empty", model.ErrInvalidDate))
	}
	return p.ListTasks(ctx, userID, storage.TaskListFilter{Date: date})
}

// TaskPatch carries the descriptive fields a task update may change. Nil
// fields are left alone. Status and timer fields only change through
// ChangeStatus.
type TaskPatch struct {
	ProjectID   *string         `json:"projectId"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	URL         *string         `json:"url"`
	Resources   *string         `json:"resources"`
	Color       *string         `json:"color"`
	Priority    *model.Priority `json:"priority"`
	Category    *model.Category `json:"category"`
	Date        *string         `json:"date"`
	StartTime   *string         `json:"startTime"`
	EndTime     *string         `json:"endTime"`
}

func (tp TaskPatch) apply(task *model.Task) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&task.ProjectID, tp.ProjectID)
	set(&task.Title, tp.Title)
	set(&task.Description, tp.Description)
	set(&task.URL, tp.URL)
	set(&task.Resources, tp.Resources)
	set(&task.Color, tp.Color)
	set(&task.Date, tp.Date)
	set(&task.StartTime, tp.StartTime)
	set(&task.EndTime, tp.EndTime)
	if tp.Priority != nil {
		task.Priority = *tp.Priority
	}
	if tp.Category != nil {
		task.Category = *tp.Category
	}
}

func (p *Planner) UpdateTask(ctx context.Context, userID, id string, patch TaskPatch) (model.Task, error) {
	task, err := p.GetTask(ctx, userID, id)
	if err != nil {
		return model.Task{}, err
	}
	patch.apply(&task)
	task.ApplyDefaults()
	if err := task.Validate(); err != nil {
		return model.Task{}, invalid(err)
	}
	task.UpdatedAt = p.now().UTC()
	if err := p.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (p *Planner) DeleteTask(ctx context.Context, userID, id string) error {
	if _, err := p.GetTask(ctx, userID, id); err != nil {
		return err
	}
	if err := p.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	p.log.Info("task deleted", "task_id", id, "user_id", userID)
	return nil
}

// ChangeStatus runs the transition at the current time and persists the
// resulting timer fields. Requesting the current status writes nothing.
func (p *Planner) ChangeStatus(ctx context.Context, userID, id string, status model.Status) (model.Task, error) {
	task, err := p.GetTask(ctx, userID, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.Status == status {
		return task, nil
	}
	next, err := timer.Apply(task, status, p.now())
	if err != nil {
		p.log.Warn("status change rejected", "task_id", id, "from", task.Status, "to", status, "error", err)
		return task, err
	}
	stored, err := p.repo.UpdateTaskStatus(ctx, timer.UpdateFor(task, next))
	if errors.Is(err, storage.ErrConflict) {
		p.log.Warn("status change lost a race", "task_id", id, "from", task.Status, "to", status)
		return task, err
	}
	if err != nil {
		return task, fmt.Errorf("update task status: %w", err)
	}
	p.log.Info("task status changed", "task_id", id, "from", task.Status, "to", stored.Status,
		"accumulated_seconds", stored.TimerPauseTime)
	return stored, nil
}

func (p *Planner) CreateProject(ctx context.Context, userID string, in model.Project) (model.Project, error) {
	now := p.now().UTC()
	in.ID = newID()
	in.UserID = userID
	if in.Status == "" {
		in.Status = model.ProjectActive
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	in.CreatedAt = now
	in.UpdatedAt = now
	if err := in.Validate(); err != nil {
		return model.Project{}, invalid(err)
	}
	if err := p.repo.CreateProject(ctx, in); err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	return in, nil
}

// ListProjects returns the user's newest projects first.
func (p *Planner) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	return p.repo.ListProjects(ctx, storage.ProjectListFilter{UserID: userID, Limit: projectListLimit})
}

// CreateUser stores a user with default settings filled in.
func (p *Planner) CreateUser(ctx context.Context, in model.User) (model.User, error) {
	now := p.now().UTC()
	in.ID = newID()
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	defaults := model.DefaultUserSettings()
	if in.Settings == (model.UserSettings{}) {
		in.Settings = defaults
	}
	if in.Settings.Theme == "" {
		in.Settings.Theme = defaults.Theme
	}
	if in.Settings.DefaultView == "" {
		in.Settings.DefaultView = defaults.DefaultView
	}
	if in.Settings.TimeZone == "" {
		in.Settings.TimeZone = defaults.TimeZone
	}
	in.CreatedAt = now
	in.UpdatedAt = now
	if err := in.Validate(); err != nil {
		return model.User{}, invalid(err)
	}
	if err := p.repo.CreateUser(ctx, in); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	p.log.Info("user created", "user_id", in.ID)
	return in, nil
}

func (p *Planner) GetUser(ctx context.Context, id string) (model.User, error) {
	return p.repo.GetUser(ctx, id)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
