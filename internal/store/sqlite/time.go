package sqlite

import (
	"fmt"
	"time"
)

// timeFormat is how timestamps are stored: RFC3339 TEXT in UTC, the SQLite
// idiom for a database with no native datetime type.
const timeFormat = "2006-01-02T15:04:05.999999999Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
