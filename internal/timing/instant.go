package timing

import "time"

const dayLayout = "2006-01-02"

// Window is a scheduled interval on the wall clock. End is only meaningful
// when HasEnd is set.
type Window struct {
	Start  time.Time
	End    time.Time
	HasEnd bool
}

// Instant returns the wall-clock instant minutes after midnight of day, in
// day's location. Minutes past 1440 roll into the next day.
func Instant(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}

// ParseDay reads a "YYYY-MM-DD" date as midnight in loc.
func ParseDay(date string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(dayLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// WindowBounds places date+startTime .. date+endTime in loc. An end earlier
// than the start lands on the next day. ok is false when the date or start
// time is missing or malformed; a bad end only clears HasEnd.
func WindowBounds(date, startTime, endTime string, loc *time.Location) (Window, bool) {
	startMin, ok := ParseClock(startTime)
	if !ok {
		return Window{}, false
	}
	day, ok := ParseDay(date, loc)
	if !ok {
		return Window{}, false
	}
	w := Window{Start: Instant(day, startMin)}
	if endMin, ok := ParseClock(endTime); ok {
		w.End = Instant(day, startMin+WindowMinutes(startMin, endMin))
		w.HasEnd = true
	}
	return w, true
}
