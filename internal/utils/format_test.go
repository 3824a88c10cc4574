package utils

import (
	"testing"
	"time"
)

func TestUpdatedAgo(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		fetched time.Time
		want    string
	}{
		{"zero", time.Time{}, "not yet updated"},
		{"now", now, "updated just now"},
		{"seconds", now.Add(-12 * time.Second), "updated 12s ago"},
		{"minutes", now.Add(-3 * time.Minute), "updated 3 minutes ago"},
		{"hours", now.Add(-2 * time.Hour), "updated 2 hours ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpdatedAgo(tt.fetched, now); got != tt.want {
				t.Errorf("UpdatedAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		due  time.Time
		want string
	}{
		{"future", now.Add(72 * time.Hour), "in 3 days"},
		{"past", now.Add(-2 * time.Hour), "2 hours ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeDue(tt.due, now); got != tt.want {
				t.Errorf("RelativeDue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthDelta(t *testing.T) {
	tests := []struct {
		delta int
		want  string
	}{
		{5, "+5 HP"},
		{-10, "-10 HP"},
		{0, "0 HP"},
	}
	for _, tt := range tests {
		if got := HealthDelta(tt.delta); got != tt.want {
			t.Errorf("HealthDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "task"); got != "1 task" {
		t.Errorf("Count(1) = %q", got)
	}
	if got := Count(1204, "task"); got != "1,204 tasks" {
		t.Errorf("Count(1204) = %q", got)
	}
	if got := Count(0, "member"); got != "0 members" {
		t.Errorf("Count(0) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"Problem set three", 8, "Problem…"},
		{"Émile", 3, "Ém…"},
		{"x", 0, "x"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
