// Package timer tracks the running/paused/finished lifecycle of a task and
// the active time accrued across its running segments.
//
// Every function takes "now" explicitly and returns a new task value; the
// input task is never modified.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/taskflow/internal/model"
	"github.com/sandeepkv93/taskflow/internal/timing"
)

var (
	ErrInvalidTransition = errors.New("timer: invalid transition")
	ErrClockRegression   = fmt.Errorf("%w: now is earlier than a recorded timestamp", ErrInvalidTransition)
)

// Begin puts a newly created task into its initial status. An empty status
// means Running. Timer fields carried in by the caller are discarded: a new
// task has no accrued time and every timestamp is now.
func Begin(task model.Task, now time.Time) model.Task {
	if task.Status == "" {
		task.Status = model.StatusRunning
	}
	nowMs := now.UnixMilli()
	task.TimerStartTime = nil
	task.TimerPauseTime = 0
	task.PausedAt = nil
	task.FinishedAt = nil
	switch task.Status {
	case model.StatusRunning:
		task.TimerStartTime = ptr(nowMs)
	case model.StatusPaused:
		task.PausedAt = ptr(nowMs)
	case model.StatusFinished:
		task.FinishedAt = ptr(nowMs)
	}
	return task
}

// Apply moves task to target at now. Targeting the current status is a no-op.
// Leaving Finished, or a now earlier than a recorded timestamp, yields
// ErrInvalidTransition and the task unchanged.
func Apply(task model.Task, target model.Status, now time.Time) (model.Task, error) {
	if !target.IsValid() {
		return task, fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, target)
	}
	if !task.Status.IsValid() {
		return task, fmt.Errorf("%w: unknown current status %q", ErrInvalidTransition, task.Status)
	}
	if task.Status == target {
		return task, nil
	}
	if task.Status == model.StatusFinished {
		return task, fmt.Errorf("%w: task %s is finished", ErrInvalidTransition, task.ID)
	}

	nowMs := now.UnixMilli()
	if last, ok := lastRecorded(task); ok && nowMs < last {
		return task, ErrClockRegression
	}

	next := task
	next.PausedAt = nil
	switch target {
	case model.StatusRunning:
		next.TimerStartTime = ptr(nowMs)
	case model.StatusPaused:
		next.TimerPauseTime = accumulated(task) + openSegment(task, nowMs)
		next.TimerStartTime = nil
		next.PausedAt = ptr(nowMs)
	case model.StatusFinished:
		next.TimerPauseTime = accumulated(task) + openSegment(task, nowMs)
		next.TimerStartTime = nil
		next.FinishedAt = ptr(nowMs)
	}
	next.Status = target
	return next, nil
}

// ElapsedSeconds is the accumulated active time plus the open segment when
// the task is running.
func ElapsedSeconds(task model.Task, now time.Time) int64 {
	return accumulated(task) + openSegment(task, now.UnixMilli())
}

// RemainingSeconds counts down the planned window. ok is false when the task
// has no planned duration.
func RemainingSeconds(task model.Task, now time.Time) (remaining int64, ok bool) {
	planned, ok := timing.PlannedDuration(task.StartTime, task.EndTime)
	if !ok {
		return 0, false
	}
	remaining = planned - ElapsedSeconds(task, now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// UpdateFor extracts the fields the transition from -> to persists. The
// update only applies while the stored row still matches from.
func UpdateFor(from, to model.Task) model.StatusUpdate {
	return model.StatusUpdate{
		ID:             to.ID,
		Status:         to.Status,
		TimerStartTime: to.TimerStartTime,
		TimerPauseTime: to.TimerPauseTime,
		PausedAt:       to.PausedAt,
		FinishedAt:     to.FinishedAt,
		FromStatus:     from.Status,
		FromStartTime:  from.TimerStartTime,
	}
}

func accumulated(task model.Task) int64 {
	if task.TimerPauseTime < 0 {
		return 0
	}
	return task.TimerPauseTime
}

func openSegment(task model.Task, nowMs int64) int64 {
	if task.Status != model.StatusRunning || task.TimerStartTime == nil {
		return 0
	}
	delta := nowMs - *task.TimerStartTime
	if delta <= 0 {
		return 0
	}
	return delta / 1000
}

func lastRecorded(task model.Task) (int64, bool) {
	var last int64
	found := false
	for _, v := range []*int64{task.TimerStartTime, task.PausedAt, task.FinishedAt} {
		if v != nil && (!found || *v > last) {
			last = *v
			found = true
		}
	}
	return last, found
}

func ptr(v int64) *int64 {
	return &v
}
