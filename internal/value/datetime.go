package value

import (
	"fmt"
	"strings"
	"time"

	"mysql2sqlite/internal/xerr"
)

// dateTimeLayouts are tried in order. MySQL's own driver (go-sql-driver/mysql,
// with parseTime=false as this engine uses it) hands back DATETIME/TIMESTAMP
// columns as the wire text form, so the layouts below mirror exactly what
// MySQL emits for DATE, DATETIME, and TIME columns, plus a couple of lenient
// fallbacks seen in hand-edited dumps.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// ParseDateTime parses a MySQL DATE/DATETIME/TIME/TIMESTAMP wire value into
// a time.Time. SQLite has no native temporal type; the caller re-serializes
// the result with time.Time.Format to produce the ISO-8601 text SQLite's
// date functions expect, per spec §4.2.
func ParseDateTime(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "0000-00-00" || trimmed == "0000-00-00 00:00:00" {
		return time.Time{}, fmt.Errorf("%w: zero-value MySQL date %q has no representable SQLite equivalent", xerr.ErrDataConversion, s)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date/time value %q", xerr.ErrDataConversion, s)
}

// FormatSQLiteDateTime renders t as the ISO-8601 text SQLite's date/time
// functions expect, choosing precision based on whether a time-of-day
// component is present.
func FormatSQLiteDateTime(t time.Time, hasTime bool) string {
	if !hasTime {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format("2006-01-02 15:04:05")
}
