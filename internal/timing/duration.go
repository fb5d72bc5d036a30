// Package timing converts wall-clock HH:MM pairs into planned durations and
// formats second counts for display.
package timing

import "strconv"

const minutesPerDay = 24 * 60

// ParseClock parses a zero-padded 24-hour "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// WindowMinutes returns the minutes between start and end, treating an end
// earlier than start as crossing midnight.
func WindowMinutes(startMin, endMin int) int {
	if endMin < startMin {
		endMin += minutesPerDay
	}
	return endMin - startMin
}

// PlannedDuration returns the planned budget in seconds. ok is false when
// either time is missing or malformed, or the window is empty.
func PlannedDuration(startTime, endTime string) (seconds int64, ok bool) {
	if startTime == "" || endTime == "" {
		return 0, false
	}
	start, ok := ParseClock(startTime)
	if !ok {
		return 0, false
	}
	end, ok := ParseClock(endTime)
	if !ok {
		return 0, false
	}
	mins := WindowMinutes(start, end)
	if mins <= 0 {
		return 0, false
	}
	return int64(mins) * 60, true
}
