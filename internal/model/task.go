package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidCategory = errors.New("model: invalid task category")
	ErrInvalidDate     = errors.New("model: invalid task date")
	ErrInvalidClock    = errors.New("model: invalid wall-clock time")
)

const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"

	DefaultColor = "#8b5cf6"
)

// Status is the task lifecycle state. The persisted tokens predate the
// Running/Paused/Finished naming and must stay as they are.
type Status string

const (
	StatusRunning  Status = "start"
	StatusPaused   Status = "pause"
	StatusFinished Status = "finish"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusPaused, StatusFinished:
		return true
	default:
		return false
	}
}

func (s Status) Label() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusFinished:
		return "Finished"
	default:
		return string(s)
	}
}

// ParseStatus accepts either the persisted token or the display label.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "start", "running", "resume":
		return StatusRunning, nil
	case "pause", "paused":
		return StatusPaused, nil
	case "finish", "finished", "done":
		return StatusFinished, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryWork          Category = "work"
	CategoryPersonal      Category = "personal"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryShopping      Category = "shopping"
	CategoryTravel        Category = "travel"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryEducation,
		CategoryShopping, CategoryTravel, CategoryEntertainment, CategoryOther:
		return true
	default:
		return false
	}
}

// Task mirrors the persisted record. TimerStartTime, PausedAt and FinishedAt
// are epoch milliseconds; TimerPauseTime is the accumulated active time in
// seconds.
type Task struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProjectID      string    `json:"projectId,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	URL            string    `json:"url,omitempty"`
	Resources      string    `json:"resources,omitempty"`
	Color          string    `json:"color"`
	Priority       Priority  `json:"priority"`
	Category       Category  `json:"category"`
	Status         Status    `json:"status"`
	Date           string    `json:"date"`
	StartTime      string    `json:"startTime,omitempty"`
	EndTime        string    `json:"endTime,omitempty"`
	TimerStartTime *int64    `json:"timerStartTime,omitempty"`
	TimerPauseTime int64     `json:"timerPauseTime"`
	PausedAt       *int64    `json:"pausedAt,omitempty"`
	FinishedAt     *int64    `json:"finishedAt,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StatusUpdate is the write contract for a status transition: exactly these
// fields are persisted, nothing else on the task changes.
//
// When FromStatus is set the write only lands if the stored row still has
// FromStatus and FromStartTime, the state the transition was computed from.
type StatusUpdate struct {
	ID             string `json:"id"`
	Status         Status `json:"status"`
	TimerStartTime *int64 `json:"timerStartTime,omitempty"`
	TimerPauseTime int64  `json:"timerPauseTime"`
	PausedAt       *int64 `json:"pausedAt,omitempty"`
	FinishedAt     *int64 `json:"finishedAt,omitempty"`

	FromStatus    Status `json:"-"`
	FromStartTime *int64 `json:"-"`
}

func (t *Task) ApplyDefaults() {
	if t.Color == "" {
		t.Color = DefaultColor
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOther
	}
	if t.Status == "" {
		t.Status = StatusRunning
	}
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !ValidDay(t.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
	}
	if t.StartTime != "" && !ValidClock(t.StartTime) {
		return fmt.Errorf("%w: start %q", ErrInvalidClock, t.StartTime)
	}
	if t.EndTime != "" && !ValidClock(t.EndTime) {
		return fmt.Errorf("%w: end %q", ErrInvalidClock, t.EndTime)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if t.TimerPauseTime < 0 {
		return errors.New("model: accumulated elapsed must not be negative")
	}
	if t.Status == StatusRunning && t.TimerStartTime == nil {
		return errors.New("model: timer_start_time is required while running")
	}
	if t.Status == StatusFinished && t.FinishedAt == nil {
		return errors.New("model: finished_at is required when task is finished")
	}
	if t.Status != StatusFinished && t.FinishedAt != nil {
		return errors.New("model: finished_at must be nil unless task is finished")
	}
	return nil
}

func ValidDay(s string) bool {
	if len(s) != len(DayLayout) {
		return false
	}
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

func ValidClock(s string) bool {
	if len(s) != len(ClockLayout) {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
