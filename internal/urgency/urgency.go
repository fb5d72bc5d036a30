// Package urgency classifies a task's scheduled window relative to now.
package urgency

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/taskflow/internal/timing"
)

type State string

const (
	StateUpcoming   State = "upcoming"
	StateInProgress State = "in-progress"
	StateCompleted  State = "completed"
	StateStarted    State = "started"
)

// Tier is an abstract urgency bucket. Mapping tiers to colours is up to the
// renderer.
type Tier string

const (
	TierFar      Tier = "far"
	TierNear     Tier = "near"
	TierImminent Tier = "imminent"
	TierPast     Tier = "past"
)

type Urgency struct {
	State State  `json:"state"`
	Text  string `json:"text"`
	Tier  Tier   `json:"tier"`
}

// Classify reports where now falls against the window date+startTime ..
// date+endTime, read in now's location. ok is false when there is no usable
// start time or date.
func Classify(date, startTime, endTime string, now time.Time) (Urgency, bool) {
	w, ok := timing.WindowBounds(date, startTime, endTime, now.Location())
	if !ok {
		return Urgency{}, false
	}

	if now.Before(w.Start) {
		return upcoming(w.Start.Sub(now)), true
	}
	if !w.HasEnd {
		return Urgency{State: StateStarted, Text: "Started", Tier: TierNear}, true
	}
	if now.Before(w.End) {
		return Urgency{State: StateInProgress, Text: "In Progress", Tier: TierNear}, true
	}
	return Urgency{State: StateCompleted, Text: "Completed", Tier: TierPast}, true
}

func upcoming(gap time.Duration) Urgency {
	secs := int64(gap / time.Second)
	days := secs / 86400
	hours := secs % 86400 / 3600
	mins := secs % 3600 / 60

	u := Urgency{State: StateUpcoming}
	switch {
	case days > 0:
		u.Tier, u.Text = TierFar, fmt.Sprintf("%dd %dh remaining", days, hours)
	case hours > 0:
		u.Tier, u.Text = TierFar, fmt.Sprintf("%dh %dm remaining", hours, mins)
	case mins > 0:
		u.Tier, u.Text = TierNear, fmt.Sprintf("%dm remaining", mins)
	default:
		u.Tier, u.Text = TierImminent, "Starting soon"
	}
	return u
}
