// Package duration formats minute counts for display.
package duration

import "fmt"

// Format renders a minute count as a compact string: "5 mins", "1 hr", "1h 30m".
// Negative input is treated as zero.
func Format(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}

	if minutes < 60 {
		if minutes == 1 {
			return "1 min"
		}
		return fmt.Sprintf("%d mins", minutes)
	}

	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		if hours == 1 {
			return "1 hr"
		}
		return fmt.Sprintf("%d hrs", hours)
	}

	return fmt.Sprintf("%dh %dm", hours, rem)
}
