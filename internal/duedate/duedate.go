// Package duedate converts between wall-clock due dates entered in a fixed
// reference zone and the absolute instants exchanged with the server.
package duedate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pibble/internal/constants"
)

var (
	// ErrDueRequired is returned when no due date was entered at all
	ErrDueRequired = errors.New("due date is required")
	// ErrMissingDate is returned when only a time of day was entered
	ErrMissingDate = errors.New("due date is missing the date part (expected YYYY-MM-DD HH:MM)")
	// ErrMissingTime is returned when only a calendar date was entered
	ErrMissingTime = errors.New("due date is missing the time part (expected YYYY-MM-DD HH:MM)")
	// ErrInvalidInstant is returned when a server timestamp cannot be parsed
	ErrInvalidInstant = errors.New("invalid timestamp")
)

// WallClock is a calendar date and time of day with no zone attached
type WallClock struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func (w WallClock) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", w.Year, w.Month, w.Day, w.Hour, w.Minute)
}

// utc places the wall-clock components on the UTC timeline so they can be
// compared and subtracted without any zone rules applied.
func (w WallClock) utc() time.Time {
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, 0, 0, time.UTC)
}

// WallClockOf reads the wall-clock components of t in zone
func WallClockOf(t time.Time, zone *time.Location) WallClock {
	local := t.In(zone)
	return WallClock{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
	}
}

// ParseWallClock parses "YYYY-MM-DD HH:MM" or "YYYY-MM-DDTHH:MM".
func ParseWallClock(s string) (WallClock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WallClock{}, ErrDueRequired
	}

	datePart, timePart, found := strings.Cut(s, "T")
	if !found {
		datePart, timePart, found = strings.Cut(s, " ")
	}
	datePart = strings.TrimSpace(datePart)
	timePart = strings.TrimSpace(timePart)

	if !found || timePart == "" {
		if strings.Contains(datePart, ":") && !strings.Contains(datePart, "-") {
			return WallClock{}, ErrMissingDate
		}
		return WallClock{}, ErrMissingTime
	}
	if datePart == "" {
		return WallClock{}, ErrMissingDate
	}

	date, err := time.Parse(constants.DateFormat, datePart)
	if err != nil {
		return WallClock{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", datePart, err)
	}
	clock, err := time.Parse(constants.TimeFormat, timePart)
	if err != nil {
		return WallClock{}, fmt.Errorf("invalid time %q (expected HH:MM): %w", timePart, err)
	}

	return WallClock{
		Year:   date.Year(),
		Month:  date.Month(),
		Day:    date.Day(),
		Hour:   clock.Hour(),
		Minute: clock.Minute(),
	}, nil
}

// ToInstant converts a wall-clock time in zone to an absolute UTC instant.
//
// The zone offset is sampled at local noon of the target date, which sits far
// from any transition. The candidate instant is then read back in zone and any
// wall-clock discrepancy is added once. Inside a spring-forward gap this lands
// one hour later on the clock; on a fall-back day an ambiguous time resolves
// to its standard-time occurrence.
func ToInstant(wc WallClock, zone *time.Location) time.Time {
	noon := time.Date(wc.Year, wc.Month, wc.Day, 12, 0, 0, 0, zone)
	_, offset := noon.Zone()

	target := wc.utc()
	candidate := target.Add(-time.Duration(offset) * time.Second)

	observed := WallClockOf(candidate, zone).utc()
	if delta := target.Sub(observed); delta != 0 {
		candidate = candidate.Add(delta)
	}
	return candidate.UTC()
}

// Normalize parses user input and returns the wire timestamp for it.
func Normalize(input string, zone *time.Location) (string, error) {
	wc, err := ParseWallClock(input)
	if err != nil {
		return "", err
	}
	return FormatWire(ToInstant(wc, zone)), nil
}

// FormatWire renders t as the millisecond UTC timestamp the server expects
func FormatWire(t time.Time) string {
	return t.UTC().Format(constants.WireFormat)
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseInstant parses a server timestamp. RFC 3339 input keeps its offset;
// a timestamp without one is read as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidInstant)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInstant, s)
}
