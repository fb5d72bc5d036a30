package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/storage"
)

const maxListLimit = 500

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   s.planner.Now().UTC().Format(time.RFC3339),
	})
}

// Tasks

func (s *Server) handleListTasks(c *gin.Context) {
	filter := storage.TaskListFilter{
		Date: c.Query("date"),
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter.Status = status
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return
	}
	filter.Limit = min(limit, maxListLimit)
	filter.Offset = offset

	tasks, err := s.planner.ListTasks(c.Request.Context(), userID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleTasksForDate(c *gin.Context) {
	tasks, err := s.planner.TasksForDate(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// createTaskRequest is the body of POST /tasks. Timer fields are not
// accepted; the planner derives them from the initial status.
type createTaskRequest struct {
	ProjectID   string         `json:"projectId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Resources   string         `json:"resources"`
	Color       string         `json:"color"`
	Priority    model.Priority `json:"priority"`
	Category    model.Category `json:"category"`
	Status      string         `json:"status"`
	Date        string         `json:"date"`
	StartTime   string         `json:"startTime"`
	EndTime     string         `json:"endTime"`
}

func (r createTaskRequest) task() (model.Task, error) {
	in := model.Task{
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Resources:   r.Resources,
		Color:       r.Color,
		Priority:    r.Priority,
		Category:    r.Category,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
	if r.Status != "" {
		status, err := model.ParseStatus(r.Status)
		if err != nil {
			return model.Task{}, err
		}
		in.Status = status
	}
	return in, nil
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	in, err := req.task()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := s.planner.CreateTask(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.planner.GetTask(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	task, err := s.planner.UpdateTask(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := s.planner.ChangeStatus(c.Request.Context(), userID(c), c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.planner.DeleteTask(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleTimer(c *gin.Context) {
	view, err := s.planner.Timer(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Calendar

func (s *Server) handleMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		badRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		badRequest(c, "invalid month")
		return
	}
	var weekStart *time.Weekday
	if raw := c.Query("weekStart"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 6 {
			badRequest(c, "weekStart must be between 0 and 6")
			return
		}
		d := time.Weekday(v)
		weekStart = &d
	}
	view, err := s.planner.MonthView(c.Request.Context(), userID(c), year, time.Month(month), weekStart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Projects

func (s *Server) handleOverview(c *gin.Context) {
	overview, err := s.planner.Overview(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleListProjects(c *gin.Context) {
	list, err := s.planner.ListProjects(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var in model.Project
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	project, err := s.planner.CreateProject(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Users

func (s *Server) handleCreateUser(c *gin.Context) {
	var in model.User
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	user, err := s.planner.CreateUser(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id := c.Param("id")
	if id != userID(c) {
		writeError(c, storage.ErrNotFound)
		return
	}
	user, err := s.planner.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
