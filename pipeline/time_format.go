package pipeline

import (
	"math"
	"time"
)

// unixSecondsToTime converts an export timestamp (unix seconds, possibly
// fractional) to a UTC time. Non-positive values are treated as unset to
// avoid 1970-era dates leaking into human-facing output.
func unixSecondsToTime(sec *float64) time.Time {
	if sec == nil || *sec <= 0 {
		return time.Time{}
	}
	ns := int64(math.Round(*sec * 1e9))
	return time.Unix(0, ns).UTC()
}

// formatDate renders the YYYY-MM-DD form used in prompt and chunk headers.
// Unset times render as "unknown date" rather than the zero-time date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Format("2006-01-02")
}
