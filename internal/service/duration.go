package service

import (
	"fmt"
	"time"
)

// FormatRemaining renders a signed duration for the SLA dashboard. Negative
// values are rendered by magnitude with an "overdue" suffix. Durations of a
// day or more show days plus leftover hours; an hour or more shows hours and
// minutes; anything shorter shows minutes only.
func FormatRemaining(d time.Duration) string {
	overdue := d < 0
	if overdue {
		d = -d
	}

	totalMinutes := int(d / time.Minute)
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	var out string
	switch {
	case days > 0:
		out = fmt.Sprintf("%dd", days)
		if hours > 0 {
			out = fmt.Sprintf("%dd %dh", days, hours)
		}
	case hours > 0:
		out = fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		out = fmt.Sprintf("%dm", minutes)
	}

	if overdue {
		out += " overdue"
	}
	return out
}

// FormatAverage renders an average latency in whole units for the team
// dashboard: weeks at seven days or more, then days, then hours, and
// "< 1h" below one hour.
func FormatAverage(d time.Duration) string {
	switch {
	case d >= 7*24*time.Hour:
		return fmt.Sprintf("%dw", int(d/(7*24*time.Hour)))
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return "< 1h"
	}
}

func meanDuration(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}
