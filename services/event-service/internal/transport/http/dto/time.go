package dto

import (
	"strings"
	"time"
)

const TimeLayout = "2006-01-02 15:04:05"

// Time is a UTC timestamp rendered as "2006-01-02 15:04:05".
type Time struct{ time.Time }

func NewTime(t time.Time) Time { return Time{t.UTC()} }

func NewTimePtr(t *time.Time) *Time {
	if t == nil {
		return nil
	}
	v := NewTime(*t)
	return &v
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

// ParseTime reads the wire layout as UTC.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
