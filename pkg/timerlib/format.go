package timerlib

import "fmt"

// FormatDuration renders a configured length the way preset labels do:
// "5m", "5m 30s", "1h 5m", "45s".
func FormatDuration(ms int64) string {
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatRemaining renders a countdown as MM:SS, or H:MM:SS past an hour.
// Partial seconds round up so a timer never shows 00:00 while running.
func FormatRemaining(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := (ms + 999) / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
