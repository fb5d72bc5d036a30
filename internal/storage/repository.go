package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/taskflow/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: conflict")
)

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	// UpdateTaskStatus writes only the status and timer fields and returns
	// the stored row.
	UpdateTaskStatus(ctx context.Context, in model.StatusUpdate) (model.Task, error)

	CreateProject(ctx context.Context, in model.Project) error
	GetProject(ctx context.Context, id string) (model.Project, error)
	UpdateProject(ctx context.Context, in model.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, filter ProjectListFilter) ([]model.Project, error)

	CreateUser(ctx context.Context, in model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	UpdateUser(ctx context.Context, in model.User) error
	DeleteUser(ctx context.Context, id string) error

	Close() error
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*PgRepository)(nil)
)

// statusRank orders running tasks first and finished tasks last.
const statusRank = `CASE status WHEN 'start' THEN 0 WHEN 'pause' THEN 1 ELSE 2 END`
