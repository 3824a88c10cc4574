// Package clitest wires a command context to the fake backend for tests.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/api/apitest"
	"github.com/julianstephens/pibble/internal/auth"
	"github.com/julianstephens/pibble/internal/cache/sqlite"
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/config"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
)

// Now is the clock every harness runs on: 2025-03-01 10:00 PST
var Now = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

type Harness struct {
	Ctx    *cli.Context
	Server *apitest.Server
	Out    *bytes.Buffer
	Store  *sqlite.Store
}

// New builds a context backed by a fresh fake server, a mocked keyring,
// and a SQLite cache in a temp dir.
func New(t *testing.T) *Harness {
	t.Helper()
	gokeyring.MockInit()

	srv := apitest.New()
	t.Cleanup(srv.Close)

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "cache.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		APIBaseURL:      srv.URL,
		ReferenceZone:   "America/Los_Angeles",
		Cache:           store.Location(),
		HTTPTimeout:     5 * time.Second,
		RefreshInterval: 15 * time.Second,
		ConfigDir:       t.TempDir(),
	}
	zone, err := duedate.LoadZone(cfg.ReferenceZone)
	if err != nil {
		t.Fatal(err)
	}

	session := auth.NewSession()
	svc := service.New(api.New(srv.URL, session), session, store,
		service.WithZone(zone),
		service.WithClock(func() time.Time { return Now }),
	)

	out := &bytes.Buffer{}
	return &Harness{
		Ctx:    &cli.Context{Config: cfg, Service: svc, Cache: store, Out: out},
		Server: srv,
		Out:    out,
		Store:  store,
	}
}

// DemoGroup signs in a demo identity and creates a group in mode
func (h *Harness) DemoGroup(t *testing.T, mode models.GroupMode) *models.GroupSummary {
	t.Helper()
	if _, err := h.Ctx.Service.LoginDemo("ana@example.com", "Ana"); err != nil {
		t.Fatalf("demo login: %v", err)
	}
	group, err := h.Ctx.Service.CreateGroup(context.Background(), models.CreateGroupRequest{
		ClassCode: "CS 101", Term: "Spring 2025", Mode: mode, GroupName: "Study buddies", InitialHealth: 100,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return group
}
