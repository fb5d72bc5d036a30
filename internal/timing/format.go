package timing

import "fmt"

// FormatElapsed renders a free-running timer: H:MM:SS from one hour up,
// MM:SS from one minute up, otherwise Ns.
func FormatElapsed(totalSec int64) string {
	if totalSec < 0 {
		totalSec = 0
	}
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	case m > 0:
		return fmt.Sprintf("%02d:%02d", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatCountdown always renders HH:MM:SS.
func FormatCountdown(totalSec int64) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", totalSec/3600, (totalSec%3600)/60, totalSec%60)
}

// FormatPlanned renders a planned window as "1h 30m", "2h" or "45m".
func FormatPlanned(totalSec int64) string {
	if totalSec < 0 {
		totalSec = 0
	}
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
