package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatNumber formats a float64 for CSV output at full precision with
// trailing zeros trimmed, so values round-trip through a reload.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatTimestamp formats a full invoice timestamp for CSV output
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatDate formats a date-only value for CSV output
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
