package scheduler

import (
	"time"

	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/timing"
)

type AlertKind string

const (
	AlertStart AlertKind = "start"
	AlertEnd   AlertKind = "end"
)

type Alert struct {
	ID     string
	TaskID string
	Title  string
	Kind   AlertKind
	At     time.Time
}

// AlertsFor returns the start and end instants still ahead of now for every
// unfinished task with a start time, read in now's location.
func AlertsFor(tasks []model.Task, now time.Time) []Alert {
	out := make([]Alert, 0, len(tasks)*2)
	for _, t := range tasks {
		if t.Status == model.StatusFinished {
			continue
		}
		w, ok := timing.WindowBounds(t.Date, t.StartTime, t.EndTime, now.Location())
		if !ok {
			continue
		}
		if w.Start.After(now) {
			out = append(out, Alert{ID: t.ID + ":start", TaskID: t.ID, Title: t.Title, Kind: AlertStart, At: w.Start})
		}
		if w.HasEnd && w.End.After(now) && w.End.After(w.Start) {
			out = append(out, Alert{ID: t.ID + ":end", TaskID: t.ID, Title: t.Title, Kind: AlertEnd, At: w.End})
		}
	}
	return out
}
