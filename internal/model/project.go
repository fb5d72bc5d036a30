package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidProjectStatus = errors.New("model: invalid project status")

type ProjectStatus string

const (
	ProjectActive ProjectStatus = "active"
	ProjectPaused ProjectStatus = "paused"
	ProjectDone   ProjectStatus = "done"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectDone:
		return true
	default:
		return false
	}
}

type Project struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Color       string        `json:"color,omitempty"`
	Tags        []string      `json:"tags"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("model: project id is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("model: project user_id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("model: project title is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProjectStatus, p.Status)
	}
	return nil
}
