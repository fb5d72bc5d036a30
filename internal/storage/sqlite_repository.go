package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/taskflow/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps status updates serialised
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.ProjectID, in.Title, in.Description, in.URL, in.Resources, in.Color,
		string(in.Priority), string(in.Category), string(in.Status), in.Date, in.StartTime, in.EndTime,
		nullInt(in.TimerStartTime), in.TimerPauseTime, nullInt(in.PausedAt), nullInt(in.FinishedAt),
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return sqliteErr(err)
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET project_id = ?, title = ?, description = ?, url = ?, resources = ?, color = ?, priority = ?, category = ?,
			date = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?`,
		in.ProjectID, in.Title, in.Description, in.URL, in.Resources, in.Color, string(in.Priority), string(in.Category),
		in.Date, in.StartTime, in.EndTime, mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) UpdateTaskStatus(ctx context.Context, in model.StatusUpdate) (model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt := `
		UPDATE tasks
		SET status = ?, timer_start_time = ?, timer_pause_time = ?, paused_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ?`
	args := []any{
		string(in.Status), nullInt(in.TimerStartTime), in.TimerPauseTime, nullInt(in.PausedAt), nullInt(in.FinishedAt),
		mustTime(r.now()), in.ID,
	}
	if in.FromStatus != "" {
		stmt += ` AND status = ? AND timer_start_time IS ?`
		args = append(args, string(in.FromStatus), nullInt(in.FromStartTime))
	}
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return model.Task{}, err
	}
	if err := checkRowsAffected(res); errors.Is(err, ErrNotFound) && in.FromStatus != "" {
		if _, getErr := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, in.ID)); getErr == nil {
			return model.Task{}, fmt.Errorf("%w: task %s changed since it was read", ErrConflict, in.ID)
		}
		return model.Task{}, err
	} else if err != nil {
		return model.Task{}, err
	}
	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, in.ID))
	if err != nil {
		return model.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	q := sqliteQuery()
	taskFilter(q, filter)
	stmt := `SELECT ` + taskColumns + ` FROM tasks` + q.whereSQL() + taskOrder + q.pagination(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, in model.Project) error {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.Title, in.Description, string(in.Status), in.Color, tags,
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return sqliteErr(err)
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	item, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, ErrNotFound
		}
		return model.Project{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, in model.Project) error {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, description = ?, status = ?, color = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.Description, string(in.Status), in.Color, tags, mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListProjects(ctx context.Context, filter ProjectListFilter) ([]model.Project, error) {
	q := sqliteQuery()
	if filter.UserID != "" {
		q.where("user_id = %s", filter.UserID)
	}
	stmt := `SELECT ` + projectColumns + ` FROM projects` + q.whereSQL() +
		` ORDER BY created_at DESC` + q.pagination(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		item, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, in model.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Email, in.Name, in.Settings.Theme, in.Settings.StartOfWeek, in.Settings.DefaultView, in.Settings.TimeZone,
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return sqliteErr(err)
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	item, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, in model.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, name = ?, theme = ?, start_of_week = ?, default_view = ?, time_zone = ?, updated_at = ?
		WHERE id = ?`,
		in.Email, in.Name, in.Settings.Theme, in.Settings.StartOfWeek, in.Settings.DefaultView, in.Settings.TimeZone,
		mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return sqliteErr(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// sqliteErr maps unique and primary key violations to ErrConflict.
func sqliteErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var priority, category, status string
	var timerStart, paused, finished sql.NullInt64
	var created, updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.ProjectID, &out.Title, &out.Description, &out.URL, &out.Resources, &out.Color,
		&priority, &category, &status, &out.Date, &out.StartTime, &out.EndTime,
		&timerStart, &out.TimerPauseTime, &paused, &finished, &created, &updated); err != nil {
		return model.Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Task{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Task{}, err
	}
	out.Priority = model.Priority(priority)
	out.Category = model.Category(category)
	out.Status = model.Status(status)
	out.TimerStartTime = intPtr(timerStart)
	out.PausedAt = intPtr(paused)
	out.FinishedAt = intPtr(finished)
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanProject(s scanner) (model.Project, error) {
	var out model.Project
	var status, tags, created, updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.Title, &out.Description, &status, &out.Color, &tags, &created, &updated); err != nil {
		return model.Project{}, err
	}
	decoded, err := decodeTags(tags)
	if err != nil {
		return model.Project{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Project{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Project{}, err
	}
	out.Status = model.ProjectStatus(status)
	out.Tags = decoded
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanUser(s scanner) (model.User, error) {
	var out model.User
	var created, updated string
	if err := s.Scan(&out.ID, &out.Email, &out.Name, &out.Settings.Theme, &out.Settings.StartOfWeek,
		&out.Settings.DefaultView, &out.Settings.TimeZone, &created, &updated); err != nil {
		return model.User{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.User{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.User{}, err
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
