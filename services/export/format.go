package export

import (
	"fmt"
	"time"
)

// formatDate renders an optional issue date, empty string when absent
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatScore renders a nullable score to exactly 2 decimal places, with
// a "-" placeholder when absent
func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// truncate shortens a string to at most max runes, ellipsis suffix
// included, so long free-text comments cannot blow up fixed-width cells
func truncate(s string, max int) string {
	if max <= 3 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
