package model

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidWeekStart = errors.New("model: start_of_week must be between 0 (Sunday) and 6")

type UserSettings struct {
	Theme       string `json:"theme"`
	StartOfWeek int    `json:"startOfWeek"`
	DefaultView string `json:"defaultView"`
	TimeZone    string `json:"timeZone"`
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:       "dark",
		StartOfWeek: int(time.Monday),
		DefaultView: "today",
		TimeZone:    "Asia/Kolkata",
	}
}

func (s UserSettings) WeekStart() time.Weekday {
	return time.Weekday(s.StartOfWeek)
}

type User struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name,omitempty"`
	Settings  UserSettings `json:"settings"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("model: user id is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("model: user email is required")
	}
	if u.Settings.StartOfWeek < 0 || u.Settings.StartOfWeek > 6 {
		return ErrInvalidWeekStart
	}
	return nil
}
