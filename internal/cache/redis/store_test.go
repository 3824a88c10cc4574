package redis

import (
	"os"
	"testing"

	"github.com/julianstephens/pibble/internal/cache/cachetest"
)

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"u/plain/", "u/plain/"},
		{"u/user_%*/", `u/user_%\*/`},
		{"a?b[c]", `a\?b\[c\]`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeGlob(tt.in); got != tt.want {
				t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocationRedactsPassword(t *testing.T) {
	s := New("redis://:hunter2@cache.internal:6379/0")
	if got := s.Location(); got != "redis://:xxxxx@cache.internal:6379/0" {
		t.Errorf("Location() = %q", got)
	}
}

func TestIsURL(t *testing.T) {
	for _, loc := range []string{"redis://localhost", "rediss://host:6380/1"} {
		if !IsURL(loc) {
			t.Errorf("IsURL(%q) = false", loc)
		}
	}
	if IsURL("/tmp/cache.db") {
		t.Error("IsURL accepted a file path")
	}
}

func TestInitRejectsBadURL(t *testing.T) {
	if err := New("http://not-redis").Init(); err == nil {
		t.Error("Init() accepted a non-redis URL")
	}
}

// Set REDIS_TEST_URL to run, e.g. REDIS_TEST_URL="redis://localhost:6379/15"
func TestStoreIntegration(t *testing.T) {
	rawURL := os.Getenv("REDIS_TEST_URL")
	if rawURL == "" {
		t.Skip("REDIS_TEST_URL not set, skipping Redis integration test")
	}

	s := New(rawURL)
	s.namespace = "pibble-test:cache:"
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer s.Close()

	if err := s.Clear(t.Context()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := s.Ping(t.Context()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	cachetest.Run(t, s)
}
