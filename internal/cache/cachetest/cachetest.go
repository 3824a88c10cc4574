// Package cachetest holds the behavior every cache.Provider must share.
package cachetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/pibble/internal/cache"
)

// Run exercises p against the Provider contract. p must be initialized and empty.
func Run(t *testing.T, p cache.Provider) {
	t.Helper()
	ctx := context.Background()
	fetched := time.Date(2025, 3, 9, 17, 30, 0, 0, time.UTC)

	t.Run("miss", func(t *testing.T) {
		_, err := p.Get(ctx, "u/nobody/groups/my")
		if !errors.Is(err, cache.ErrMiss) {
			t.Fatalf("Get() error = %v, want ErrMiss", err)
		}
	})

	t.Run("put and get", func(t *testing.T) {
		key := cache.GroupsKey("user-1")
		body := []byte(`{"groups":[{"id":"g1","invite_code":"ABC123"}]}`)
		if err := p.Put(ctx, key, body, fetched); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, err := p.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !got.FetchedAt.Equal(fetched) {
			t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, fetched)
		}

		var decoded struct {
			Groups []struct {
				ID         string `json:"id"`
				InviteCode string `json:"inviteCode"`
			} `json:"groups"`
		}
		if err := got.Decode(&decoded); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if len(decoded.Groups) != 1 || decoded.Groups[0].InviteCode != "ABC123" {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		key := cache.GroupStateKey("user-1", "g1")
		later := fetched.Add(15 * time.Second)
		if err := p.Put(ctx, key, []byte(`{"v":1}`), fetched); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := p.Put(ctx, key, []byte(`{"v":2}`), later); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := p.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		var v struct{ V int }
		if err := got.Decode(&v); err != nil || v.V != 2 {
			t.Errorf("body = %s, want v=2", got.Body)
		}
		if !got.FetchedAt.Equal(later) {
			t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, later)
		}
	})

	t.Run("invalidate", func(t *testing.T) {
		a, b := cache.GroupStateKey("user-2", "a"), cache.GroupStateKey("user-2", "b")
		for _, k := range []string{a, b} {
			if err := p.Put(ctx, k, []byte(`{}`), fetched); err != nil {
				t.Fatalf("Put(%s) error = %v", k, err)
			}
		}
		if err := p.Invalidate(ctx, a, "u/user-2/never-stored"); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
		if _, err := p.Get(ctx, a); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("Get(%s) after Invalidate error = %v", a, err)
		}
		if _, err := p.Get(ctx, b); err != nil {
			t.Errorf("Get(%s) should survive, error = %v", b, err)
		}
	})

	t.Run("invalidate prefix", func(t *testing.T) {
		// Wildcard characters in the prefix must match literally.
		odd := cache.GroupsKey("user_%*")
		keep := cache.GroupsKey("userXY")
		for _, k := range []string{odd, keep, cache.GroupStateKey("user_%*", "g")} {
			if err := p.Put(ctx, k, []byte(`{}`), fetched); err != nil {
				t.Fatalf("Put(%s) error = %v", k, err)
			}
		}
		if err := p.InvalidatePrefix(ctx, cache.OwnerPrefix("user_%*")); err != nil {
			t.Fatalf("InvalidatePrefix() error = %v", err)
		}
		if _, err := p.Get(ctx, odd); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("Get(%s) error = %v, want ErrMiss", odd, err)
		}
		if _, err := p.Get(ctx, keep); err != nil {
			t.Errorf("Get(%s) should survive, error = %v", keep, err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := p.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := p.Get(ctx, cache.GroupsKey("user-1")); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("Get() after Clear error = %v", err)
		}
	})

	if p.Location() == "" {
		t.Error("Location() is empty")
	}
}
