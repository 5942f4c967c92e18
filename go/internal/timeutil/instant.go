// Package timeutil normalizes marketplace timestamps and formats human-relative durations.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for empty or unparseable timestamp strings.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// zonelessLayouts are tried, in UTC, when the backend omits the zone designator.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseInstant parses an ISO-8601 timestamp. Strings carrying an offset or a "Z"
// suffix keep their zone; strings without one are interpreted as UTC.
// The result is always expressed in UTC.
func ParseInstant(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// InstantOrZero is ParseInstant for ingestion code that carries invalid
// timestamps forward as the zero time.
func InstantOrZero(raw string) time.Time {
	t, err := ParseInstant(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
