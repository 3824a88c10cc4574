package cache_test

import (
	"testing"
	"time"

	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/cache/cachetest"
)

func TestMemoryProvider(t *testing.T) {
	cachetest.Run(t, cache.NewMemory())
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"groups", cache.GroupsKey("u1"), "u/u1/groups/my"},
		{"state", cache.GroupStateKey("u1", "g9"), "u/u1/groups/g9/state"},
		{"anonymous", cache.OwnerPrefix("  "), "u/anonymous/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEntryAge(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 30, 0, time.UTC)
	e := cache.Entry{FetchedAt: now.Add(-30 * time.Second)}
	if got := e.Age(now); got != 30*time.Second {
		t.Errorf("Age() = %v, want 30s", got)
	}
	future := cache.Entry{FetchedAt: now.Add(time.Minute)}
	if got := future.Age(now); got != 0 {
		t.Errorf("Age() for a future fetch = %v, want 0", got)
	}
}
