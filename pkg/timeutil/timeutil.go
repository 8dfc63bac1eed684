// Package timeutil holds the timestamp helpers shared by the vacancy and
// consent engines: latest-event selection, ISO-8601 parsing and a
// human-readable rendering of durations for diagnostics.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const Day = 24 * time.Hour

// GetLatestDate returns the chronologically greatest of dates. ok is false
// when dates is empty.
func GetLatestDate(dates ...time.Time) (latest time.Time, ok bool) {
	switch len(dates) {
	case 0:
		return time.Time{}, false
	case 1:
		return dates[0], true
	}
	latest = dates[0]
	for _, d := range dates[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest, true
}

// ParseISO parses an RFC 3339 timestamp, with or without fractional seconds,
// and returns it in UTC.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatISO renders t in UTC at full precision so ParseISO returns the same
// instant.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Humanize renders d as "2 days, 3 hours, 4 minutes, 5 seconds", dropping
// zero components. Negative durations are rendered by magnitude.
func Humanize(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Truncate(time.Second)
	if d == 0 {
		return "0 seconds"
	}
	units := []struct {
		name string
		size time.Duration
	}{
		{"day", Day},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
	}
	var parts []string
	for _, u := range units {
		n := d / u.size
		if n == 0 {
			continue
		}
		d -= n * u.size
		label := u.name
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	return strings.Join(parts, ", ")
}
