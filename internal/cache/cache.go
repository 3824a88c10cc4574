// Package cache keeps the last server response for each resource so the
// dashboard can show its age and the CLI can answer offline.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/pibble/internal/casing"
)

var ErrMiss = errors.New("cache miss")

// Entry is one cached response body, kept in its wire form
type Entry struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
}

// Age reports how long ago the entry was fetched, never negative
func (e Entry) Age(now time.Time) time.Duration {
	if d := now.Sub(e.FetchedAt); d > 0 {
		return d
	}
	return 0
}

// Decode reads the wire body into v with camelCase keys restored
func (e Entry) Decode(v any) error {
	return casing.Unmarshal(e.Body, v)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Entries
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, body []byte, fetchedAt time.Time) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error

	// Location is a display-safe description of where entries live
	Location() string
}

// Migrator is implemented by SQL backends whose schema is versioned
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

// OwnerPrefix scopes every key to one signed-in identity
func OwnerPrefix(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		owner = "anonymous"
	}
	return "u/" + owner + "/"
}

func GroupsKey(owner string) string {
	return OwnerPrefix(owner) + "groups/my"
}

func GroupStateKey(owner, groupID string) string {
	return OwnerPrefix(owner) + "groups/" + groupID + "/state"
}
