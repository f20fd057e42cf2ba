// Package timezone resolves the configured IANA zone in which due dates are
// inferred and rendered.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// TimezoneUTC is the default timezone identifier.
const TimezoneUTC = "UTC"

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Moscow").
// An empty identifier means UTC. If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || tz == TimezoneUTC {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// Clock returns a now function reporting the current time in tz.
func Clock(tz *time.Location) func() time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return func() time.Time {
		return time.Now().In(tz)
	}
}

// FromUnix converts a stored Unix timestamp to a time in tz.
func FromUnix(ts int64, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Unix(ts, 0).In(tz)
}
