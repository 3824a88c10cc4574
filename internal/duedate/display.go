package duedate

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/logger"
)

// DefaultZone is used whenever no reference zone is configured
const DefaultZone = constants.DefaultReferenceZone

// LoadZone loads the reference zone, falling back to DefaultZone when name is empty.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid reference zone %q: %w", name, err)
	}
	return zone, nil
}

// MustLoadDefaultZone loads DefaultZone, falling back to UTC if the zone
// database is unavailable.
func MustLoadDefaultZone() *time.Location {
	zone, err := LoadZone(DefaultZone)
	if err != nil {
		logger.Warn("Falling back to UTC", "zone", DefaultZone, "error", err)
		return time.UTC
	}
	return zone
}

// ZoneLabel is the zone's own abbreviation at t, e.g. PST or PDT
func ZoneLabel(t time.Time, zone *time.Location) string {
	name, _ := t.In(zone).Zone()
	return name
}

// Display renders t in zone with its standard/daylight label.
func Display(t time.Time, zone *time.Location) string {
	local := t.In(zone)
	return local.Format(constants.DisplayFormat) + " " + ZoneLabel(t, zone)
}

// DisplayString parses a server timestamp and renders it, or returns the raw
// value when it cannot be parsed.
func DisplayString(s string, zone *time.Location) string {
	t, err := ParseInstant(s)
	if err != nil {
		logger.Debug("Unparsable timestamp", "value", s)
		return s
	}
	return Display(t, zone)
}

// Clock renders t as the dashboard clock with its zone label
func Clock(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(constants.ClockFormat) + " " + ZoneLabel(t, zone)
}

// Comparable rebuilds t's wall-clock components in zone on the UTC timeline.
// Bucket boundaries computed from comparable values follow zone days.
func Comparable(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}

// StartOfDay truncates a comparable value to midnight
func StartOfDay(c time.Time) time.Time {
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, c.Location())
}

// AddDays moves a comparable value by whole calendar days
func AddDays(c time.Time, days int) time.Time {
	return c.AddDate(0, 0, days)
}
