package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/taskflow/internal/model"
)

func TestAlertsFor(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "in-progress", Date: "2024-03-10", StartTime: "09:00", EndTime: "10:00", Status: model.StatusRunning},
		{ID: "later", Date: "2024-03-10", StartTime: "23:30", EndTime: "00:15", Status: model.StatusPaused},
		{ID: "done", Date: "2024-03-10", StartTime: "11:00", EndTime: "12:00", Status: model.StatusFinished},
		{ID: "untimed", Date: "2024-03-10", Status: model.StatusRunning},
		{ID: "open-ended", Date: "2024-03-11", StartTime: "08:00", Status: model.StatusRunning},
		{ID: "bad-date", Date: "March 10", StartTime: "11:00", Status: model.StatusRunning},
	}

	alerts := AlertsFor(tasks, now)
	got := map[string]time.Time{}
	for _, a := range alerts {
		got[a.ID] = a.At
	}

	want := map[string]time.Time{
		"in-progress:end":  time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		"later:start":      time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC),
		"later:end":        time.Date(2024, 3, 11, 0, 15, 0, 0, time.UTC),
		"open-ended:start": time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
	for id, at := range want {
		if !got[id].Equal(at) {
			t.Fatalf("alert %s at %s, want %s", id, got[id], at)
		}
	}
}
