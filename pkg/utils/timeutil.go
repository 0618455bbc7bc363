package utils

import (
	"fmt"
	"sync"
	"time"
	// Embedded zone database so Eastern resolves on hosts without tzdata.
	// A fixed-offset fallback would silently drop DST.
	_ "time/tzdata"
)

// Scheduled times are stored in UTC and displayed in US Eastern. Offset-less
// input is read as Eastern before conversion.

var (
	easternOnce sync.Once
	easternLoc  *time.Location
)

func Eastern() *time.Location {
	easternOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			panic(err)
		}
		easternLoc = loc
	})
	return easternLoc
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseScheduledTime parses an ISO 8601 timestamp and normalizes it to UTC.
// A trailing "Z" or explicit offset is honored; otherwise the value is
// interpreted in Eastern time.
func ParseScheduledTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, Eastern()); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid datetime format: %q", value)
}

// FormatEastern renders a stored UTC instant in the display timezone.
func FormatEastern(t time.Time) string {
	return t.In(Eastern()).Format(time.RFC3339)
}

func IsFuture(t time.Time) bool {
	return t.After(time.Now().UTC())
}
