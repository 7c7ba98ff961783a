package parking

import (
	"fmt"
	"time"
)

// TimeLayout is the ISO-8601 form used for exposed and outgoing timestamps.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Layouts accepted from the API. Fractional seconds are accepted after the
// seconds field by time.Parse even though no layout spells them out.
var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. A trailing "Z" means UTC and a
// value without an offset is assumed to be UTC. The original offset is kept;
// use NormalizeTime to convert.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// NormalizeTime converts t to UTC and drops sub-second precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// FormatTime renders t normalized, e.g. 2025-12-23T00:47:00+00:00.
func FormatTime(t time.Time) string {
	return NormalizeTime(t).Format(TimeLayout)
}

// formatAPITime keeps the caller's offset and truncates to seconds.
func formatAPITime(t time.Time) string {
	return t.Truncate(time.Second).Format(TimeLayout)
}
