package storage

import (
	"fmt"
	"strings"
)

// query accumulates WHERE clauses and their arguments for a driver's
// placeholder style.
type query struct {
	clauses  []string
	args     []any
	// numbered selects $1-style placeholders (postgres) over "?" (sqlite).
	numbered bool
}

func sqliteQuery() *query { return &query{} }
func pgQuery() *query     { return &query{numbered: true} }

func (q *query) placeholder(n int) string {
	if q.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// where adds cond with each %s replaced by the next placeholder.
func (q *query) where(cond string, vals ...any) {
	marks := make([]any, len(vals))
	for i, v := range vals {
		q.args = append(q.args, v)
		marks[i] = q.placeholder(len(q.args))
	}
	q.clauses = append(q.clauses, fmt.Sprintf(cond, marks...))
}

func (q *query) whereSQL() string {
	if len(q.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.clauses, " AND ")
}

func (q *query) pagination(limit, offset int) string {
	sql := ""
	if limit > 0 {
		q.args = append(q.args, limit)
		sql += " LIMIT " + q.placeholder(len(q.args))
	}
	if offset > 0 {
		if limit <= 0 && !q.numbered {
			// sqlite needs a LIMIT before OFFSET
			sql += " LIMIT -1"
		}
		q.args = append(q.args, offset)
		sql += " OFFSET " + q.placeholder(len(q.args))
	}
	return sql
}

func taskFilter(q *query, f TaskListFilter) {
	if f.UserID != "" {
		q.where("user_id = %s", f.UserID)
	}
	switch {
	case f.Date != "":
		q.where("date = %s", f.Date)
	default:
		if f.From != "" {
			q.where("date >= %s", f.From)
		}
		if f.To != "" {
			q.where("date <= %s", f.To)
		}
	}
	if f.Status != "" {
		q.where("status = %s", string(f.Status))
	}
}

const taskOrder = ` ORDER BY ` + statusRank + `, start_time = '', start_time, created_at`

const taskColumns = `id, user_id, project_id, title, description, url, resources, color, priority, category,
	status, date, start_time, end_time, timer_start_time, timer_pause_time, paused_at, finished_at, created_at, updated_at`

const projectColumns = `id, user_id, title, description, status, color, tags, created_at, updated_at`

const userColumns = `id, email, name, theme, start_of_week, default_view, time_zone, created_at, updated_at`
