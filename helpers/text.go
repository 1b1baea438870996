package helpers

import (
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 local layout used for every session timestamp
const TimestampLayout = "2006-01-02T15:04:05"

// NormalizeText collapses runs of whitespace (including non-breaking spaces)
// into single spaces and trims the result.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatTimestamp renders t in local time without a zone suffix
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// FirstNonEmpty returns the first value that is not blank, unchanged
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
