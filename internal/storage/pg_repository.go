package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandeepkv93/taskflow/internal/model"
)

const pgUniqueViolation = "23505"

// PgRepository is a PostgreSQL-backed Repository.
type PgRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, now: time.Now}
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PgRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	repo := NewPgRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *PgRepository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates the tables and indexes if they don't exist.
func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			theme         TEXT NOT NULL DEFAULT 'dark',
			start_of_week INTEGER NOT NULL DEFAULT 1,
			default_view  TEXT NOT NULL DEFAULT 'today',
			time_zone     TEXT NOT NULL DEFAULT 'Asia/Kolkata',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'active',
			color       TEXT NOT NULL DEFAULT '',
			tags        TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			project_id       TEXT NOT NULL DEFAULT '',
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			resources        TEXT NOT NULL DEFAULT '',
			color            TEXT NOT NULL DEFAULT '#8b5cf6',
			priority         TEXT NOT NULL DEFAULT 'medium',
			category         TEXT NOT NULL DEFAULT 'other',
			status           TEXT NOT NULL DEFAULT 'start' CHECK (status IN ('start', 'pause', 'finish')),
			date             TEXT NOT NULL,
			start_time       TEXT NOT NULL DEFAULT '',
			end_time         TEXT NOT NULL DEFAULT '',
			timer_start_time BIGINT,
			timer_pause_time BIGINT NOT NULL DEFAULT 0,
			paused_at        BIGINT,
			finished_at      BIGINT,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`,
		`ALTER TABLE tasks ADD COLUMN IF NOT EXISTS paused_at BIGINT`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *PgRepository) CreateTask(ctx context.Context, in model.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		in.ID, in.UserID, in.ProjectID, in.Title, in.Description, in.URL, in.Resources, in.Color,
		string(in.Priority), string(in.Category), string(in.Status), in.Date, in.StartTime, in.EndTime,
		in.TimerStartTime, in.TimerPauseTime, in.PausedAt, in.FinishedAt, pgTime(in.CreatedAt), pgTime(in.UpdatedAt),
	)
	return pgErr(err)
}

func (r *PgRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	task, err := pgScanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	return task, pgErr(err)
}

func (r *PgRepository) UpdateTask(ctx context.Context, in model.Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET project_id = $1, title = $2, description = $3, url = $4, resources = $5, color = $6, priority = $7, category = $8,
			date = $9, start_time = $10, end_time = $11, updated_at = $12
		WHERE id = $13`,
		in.ProjectID, in.Title, in.Description, in.URL, in.Resources, in.Color, string(in.Priority), string(in.Category),
		in.Date, in.StartTime, in.EndTime, pgTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkTag(tag)
}

func (r *PgRepository) UpdateTaskStatus(ctx context.Context, in model.StatusUpdate) (model.Task, error) {
	stmt := `
		UPDATE tasks
		SET status = $1, timer_start_time = $2, timer_pause_time = $3, paused_at = $4, finished_at = $5, updated_at = $6
		WHERE id = $7`
	args := []any{string(in.Status), in.TimerStartTime, in.TimerPauseTime, in.PausedAt, in.FinishedAt, pgTime(r.now()), in.ID}
	if in.FromStatus != "" {
		stmt += ` AND status = $8 AND timer_start_time IS NOT DISTINCT FROM $9`
		args = append(args, string(in.FromStatus), in.FromStartTime)
	}
	task, err := pgScanTask(r.pool.QueryRow(ctx, stmt+` RETURNING `+taskColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) && in.FromStatus != "" {
		if _, getErr := r.GetTask(ctx, in.ID); getErr == nil {
			return model.Task{}, fmt.Errorf("%w: task %s changed since it was read", ErrConflict, in.ID)
		}
	}
	return task, pgErr(err)
}

func (r *PgRepository) DeleteTask(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkTag(tag)
}

func (r *PgRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	q := pgQuery()
	taskFilter(q, filter)
	stmt := `SELECT ` + taskColumns + ` FROM tasks` + q.whereSQL() + taskOrder + q.pagination(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, stmt, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := pgScanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *PgRepository) CreateProject(ctx context.Context, in model.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.UserID, in.Title, in.Description, string(in.Status), in.Color, nonNilTags(in.Tags),
		pgTime(in.CreatedAt), pgTime(in.UpdatedAt),
	)
	return pgErr(err)
}

func (r *PgRepository) GetProject(ctx context.Context, id string) (model.Project, error) {
	item, err := pgScanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	return item, pgErr(err)
}

func (r *PgRepository) UpdateProject(ctx context.Context, in model.Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET title = $1, description = $2, status = $3, color = $4, tags = $5, updated_at = $6
		WHERE id = $7`,
		in.Title, in.Description, string(in.Status), in.Color, nonNilTags(in.Tags), pgTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkTag(tag)
}

func (r *PgRepository) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkTag(tag)
}

func (r *PgRepository) ListProjects(ctx context.Context, filter ProjectListFilter) ([]model.Project, error) {
	q := pgQuery()
	if filter.UserID != "" {
		q.where("user_id = %s", filter.UserID)
	}
	stmt := `SELECT ` + projectColumns + ` FROM projects` + q.whereSQL() +
		` ORDER BY created_at DESC` + q.pagination(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, stmt, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		item, scanErr := pgScanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PgRepository) CreateUser(ctx context.Context, in model.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.Email, in.Name, in.Settings.Theme, in.Settings.StartOfWeek, in.Settings.DefaultView, in.Settings.TimeZone,
		pgTime(in.CreatedAt), pgTime(in.UpdatedAt),
	)
	return pgErr(err)
}

func (r *PgRepository) GetUser(ctx context.Context, id string) (model.User, error) {
	var out model.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&out.ID, &out.Email, &out.Name, &out.Settings.Theme, &out.Settings.StartOfWeek,
			&out.Settings.DefaultView, &out.Settings.TimeZone, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return model.User{}, pgErr(err)
	}
	return out, nil
}

func (r *PgRepository) UpdateUser(ctx context.Context, in model.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, theme = $3, start_of_week = $4, default_view = $5, time_zone = $6, updated_at = $7
		WHERE id = $8`,
		in.Email, in.Name, in.Settings.Theme, in.Settings.StartOfWeek, in.Settings.DefaultView, in.Settings.TimeZone,
		pgTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return pgErr(err)
	}
	return checkTag(tag)
}

func (r *PgRepository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkTag(tag)
}

func pgScanTask(row pgx.Row) (model.Task, error) {
	var out model.Task
	var priority, category, status string
	if err := row.Scan(&out.ID, &out.UserID, &out.ProjectID, &out.Title, &out.Description, &out.URL, &out.Resources, &out.Color,
		&priority, &category, &status, &out.Date, &out.StartTime, &out.EndTime,
		&out.TimerStartTime, &out.TimerPauseTime, &out.PausedAt, &out.FinishedAt, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.Task{}, err
	}
	out.Priority = model.Priority(priority)
	out.Category = model.Category(category)
	out.Status = model.Status(status)
	return out, nil
}

func pgScanProject(row pgx.Row) (model.Project, error) {
	var out model.Project
	var status string
	if err := row.Scan(&out.ID, &out.UserID, &out.Title, &out.Description, &status, &out.Color, &out.Tags,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.Project{}, err
	}
	out.Status = model.ProjectStatus(status)
	out.Tags = nonNilTags(out.Tags)
	return out, nil
}

// pgErr maps no-rows to ErrNotFound and unique violations to ErrConflict.
func pgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pe.Message)
	}
	return err
}

func checkTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func pgTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
