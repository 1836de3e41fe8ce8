package utils

import (
	"time"
)

// MsToTime converts milliseconds to time.Duration
func MsToTime(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// Speedup returns baseline/candidate, or 0 when candidate is not positive.
func Speedup(baseline, candidate time.Duration) float64 {
	if candidate <= 0 {
		return 0
	}
	return float64(baseline) / float64(candidate)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return d.String()
	}
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
