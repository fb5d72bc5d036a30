package timer

import (
	"time"

	"github.com/sandeepkv93/taskflow/internal/model"
)

// Session is the live view of one task's timer between persistence writes.
type Session struct {
	TaskID             string
	SegmentStart       time.Time
	AccumulatedSeconds int64
	Running            bool
}

func SessionFor(task model.Task) Session {
	s := Session{
		TaskID:             task.ID,
		AccumulatedSeconds: accumulated(task),
	}
	if task.Status == model.StatusRunning && task.TimerStartTime != nil {
		s.Running = true
		s.SegmentStart = time.UnixMilli(*task.TimerStartTime)
	}
	return s
}

func (s Session) Elapsed(now time.Time) int64 {
	if !s.Running {
		return s.AccumulatedSeconds
	}
	delta := now.Sub(s.SegmentStart)
	if delta <= 0 {
		return s.AccumulatedSeconds
	}
	return s.AccumulatedSeconds + int64(delta/time.Second)
}

// Sessions is a table of sessions keyed by task id. It is owned by the
// caller; entries only change through Sync and Apply.
type Sessions map[string]Session

func NewSessions() Sessions {
	return make(Sessions)
}

// Sync reconciles the table against a persisted snapshot, dropping sessions
// for tasks that are no longer present.
func (s Sessions) Sync(tasks []model.Task) {
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		seen[task.ID] = true
		s[task.ID] = SessionFor(task)
	}
	for id := range s {
		if !seen[id] {
			delete(s, id)
		}
	}
}

// Apply runs the transition and records the resulting session on success.
func (s Sessions) Apply(task model.Task, target model.Status, now time.Time) (model.Task, error) {
	next, err := Apply(task, target, now)
	if err != nil {
		return task, err
	}
	s[next.ID] = SessionFor(next)
	return next, nil
}

func (s Sessions) Elapsed(taskID string, now time.Time) (int64, bool) {
	sess, ok := s[taskID]
	if !ok {
		return 0, false
	}
	return sess.Elapsed(now), true
}

func (s Sessions) AnyRunning() bool {
	for _, sess := range s {
		if sess.Running {
			return true
		}
	}
	return false
}
