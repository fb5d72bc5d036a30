package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/storage"
)

type testEnv struct {
	server *Server
	now    time.Time
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	env := &testEnv{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	planner := service.New(repo,
		service.WithClock(func() time.Time { return env.now }),
		service.WithLogger(log),
	)
	env.server = NewServer(planner, log)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestTasksRequireUser(t *testing.T) {
	env := setupServer(t)
	w := env.do(t, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskLifecycle(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{
		"title":     "Standup",
		"date":      "2024-03-10",
		"startTime": "09:00",
		"endTime":   "10:00",
		"category":  "work",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Task](t, w)
	assert.Equal(t, model.StatusRunning, created.Status)
	assert.Equal(t, model.DefaultColor, created.Color)
	require.NotNil(t, created.TimerStartTime)

	env.now = env.now.Add(30 * time.Minute)
	w = env.do(t, http.MethodGet, "/tasks/"+created.ID+"/timer", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.TimerView](t, w)
	assert.Equal(t, int64(1800), view.ElapsedSeconds)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, int64(1800), *view.RemainingSeconds)
	assert.Equal(t, "00:30:00", view.Remaining)
	require.NotNil(t, view.Urgency)
	assert.Equal(t, "in-progress", string(view.Urgency.State))

	w = env.do(t, http.MethodPatch, "/tasks/"+created.ID+"/status", "u1", map[string]string{"status": "pause"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paused := decode[model.Task](t, w)
	assert.Equal(t, model.StatusPaused, paused.Status)
	assert.Equal(t, int64(1800), paused.TimerPauseTime)
	assert.Nil(t, paused.TimerStartTime)

	w = env.do(t, http.MethodPut, "/tasks/"+created.ID, "u1", map[string]any{"title": "Daily standup", "status": "finish"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Task](t, w)
	assert.Equal(t, "Daily standup", updated.Title)
	assert.Equal(t, model.StatusPaused, updated.Status, "PUT must not change status")

	env.now = env.now.Add(time.Minute)
	w = env.do(t, http.MethodPatch, "/tasks/"+created.ID+"/status", "u1", map[string]string{"status": "finish"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/tasks/"+created.ID+"/status", "u1", map[string]string{"status": "start"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "invalid transition")

	w = env.do(t, http.MethodDelete, "/tasks/"+created.ID, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/tasks/"+created.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskBadInput(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "x", "date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "x", "date": "2024-03-10", "status": "stopped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/tasks/missing/status", "u1", map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/tasks/missing/status", "u1", map[string]string{"status": "pause"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskIgnoresTimerFields(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{
		"title":          "Backfilled",
		"date":           "2024-03-10",
		"status":         "finish",
		"finishedAt":     int64(1),
		"timerPauseTime": int64(86400),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Task](t, w)
	assert.Equal(t, model.StatusFinished, created.Status)
	require.NotNil(t, created.FinishedAt)
	assert.Equal(t, env.now.UnixMilli(), *created.FinishedAt)
	assert.Equal(t, int64(0), created.TimerPauseTime)
}

func TestListTasksByDateAndStatus(t *testing.T) {
	env := setupServer(t)
	for _, date := range []string{"2024-03-10", "2024-03-10", "2024-03-11"} {
		w := env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "t " + date, "date": date})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	env.do(t, http.MethodPost, "/tasks", "u2", map[string]any{"title": "other", "date": "2024-03-10"})

	w := env.do(t, http.MethodGet, "/tasks/date/2024-03-10", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Task](t, w), 2)

	w = env.do(t, http.MethodGet, "/tasks?from=2024-03-01&to=2024-03-31", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Task](t, w), 3)

	w = env.do(t, http.MethodGet, "/tasks?status=paused", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.Task](t, w))

	w = env.do(t, http.MethodGet, "/tasks?date=10-03-2024", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/tasks?limit=-1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverview(t *testing.T) {
	env := setupServer(t)
	env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "Standup", "date": "2024-03-10", "startTime": "09:30"})
	env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "Trip", "date": "2024-03-11"})
	env.do(t, http.MethodPost, "/tasks", "u2", map[string]any{"title": "Other", "date": "2024-03-10"})

	w := env.do(t, http.MethodGet, "/overview", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	overview := decode[service.Overview](t, w)
	assert.Equal(t, 2, overview.Total)
	assert.Equal(t, 1, overview.Today)
	assert.Equal(t, 1, overview.Upcoming)
	require.NotNil(t, overview.Next)
	assert.Equal(t, "Standup", overview.Next.Title)

	w = env.do(t, http.MethodGet, "/overview", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCalendarMonth(t *testing.T) {
	env := setupServer(t)
	env.do(t, http.MethodPost, "/tasks", "u1", map[string]any{"title": "t", "date": "2024-03-10"})

	w := env.do(t, http.MethodGet, "/calendar/2024/3", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.MonthView](t, w)
	require.Len(t, view.Days, 42)
	assert.Equal(t, "2024-02-26", view.Days[0].Date)
	assert.Equal(t, "March 2024", view.Label)

	w = env.do(t, http.MethodGet, "/calendar/2024/3?weekStart=0", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[service.MonthView](t, w)
	assert.Equal(t, "2024-02-25", view.Days[0].Date)

	w = env.do(t, http.MethodGet, "/calendar/2024/13", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/calendar/2024/3?weekStart=9", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectsAndUsers(t *testing.T) {
	env := setupServer(t)

	w := env.do(t, http.MethodPost, "/users", "", map[string]any{"email": "ada@example.com", "name": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[model.User](t, w)
	assert.Equal(t, model.DefaultUserSettings(), user.Settings)

	w = env.do(t, http.MethodPost, "/users", "", map[string]any{"email": "ada@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/users/"+user.ID, user.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/users/"+user.ID, "someone-else", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/projects", user.ID, map[string]any{"title": "Home", "tags": []string{"diy"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, "/projects", user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	projects := decode[[]model.Project](t, w)
	require.Len(t, projects, 1)
	assert.Equal(t, []string{"diy"}, projects[0].Tags)
	assert.Equal(t, model.ProjectActive, projects[0].Status)
}
