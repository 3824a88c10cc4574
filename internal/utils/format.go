package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// UpdatedAgo renders how long ago data was fetched, e.g. "updated 12s ago"
func UpdatedAgo(fetched, now time.Time) string {
	if fetched.IsZero() {
		return "not yet updated"
	}
	age := now.Sub(fetched)
	switch {
	case age < time.Second:
		return "updated just now"
	case age < time.Minute:
		return fmt.Sprintf("updated %ds ago", int(age/time.Second))
	}
	return "updated " + humanize.RelTime(fetched, now, "ago", "from now")
}

// RelativeDue renders a due instant relative to now, e.g. "in 3 days"
func RelativeDue(due, now time.Time) string {
	if due.After(now) {
		return "in " + strings.TrimSuffix(humanize.RelTime(due, now, "", ""), " ")
	}
	return humanize.RelTime(due, now, "ago", "")
}

// HealthDelta renders a signed HP change, e.g. "+5 HP" or "-10 HP"
func HealthDelta(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d HP", delta)
	}
	return fmt.Sprintf("%d HP", delta)
}

// Count renders n with a singular or plural noun, e.g. "1 task", "1,204 tasks"
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// Truncate shortens s to at most width runes, marking the cut with "…"
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
