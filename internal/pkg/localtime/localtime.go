// Package localtime implements the wire format for timestamps: ISO-8601
// local date-time without a UTC offset, e.g. "2024-03-01T15:04:05".
package localtime

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02T15:04:05"

// Time marshals as an offset-less local date-time. The zero value marshals
// as JSON null.
type Time time.Time

func (t Time) Std() time.Time {
	return time.Time(t)
}

func From(t time.Time) Time {
	return Time(t)
}

func (t Time) MarshalJSON() ([]byte, error) {
	std := time.Time(t)
	if std.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + std.Format(Layout) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*t = Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string in %q format", Layout)
	}
	parsed, err := time.ParseInLocation(Layout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	*t = Time(parsed)
	return nil
}
