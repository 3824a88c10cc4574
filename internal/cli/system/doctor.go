package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/keyring"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) bool {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return false
		}
		ctx.Printf("✓ %s: OK\n", name)
		return true
	}
	skip := func(name, reason string) {
		ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
	}
	warn := func(name string, err error) {
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	}

	// Check 1: configuration
	report("Configuration", checkConfig(ctx))

	// Check 2: reference zone
	report("Reference zone", checkZone(ctx))

	// Check 3: keyring (sessions live there; warning only)
	if keyring.IsAvailable() {
		ctx.Printf("✓ OS keyring: OK\n")
	} else {
		warn("OS keyring", errors.New("not available; sign-in will not survive restarts"))
	}

	// Check 4: cache reachable
	reachable := report("Cache reachable", checkCacheReachable(ctx))

	// Check 5: cache schema (SQL backends only)
	migrator, versioned := ctx.Cache.(cache.Migrator)
	switch {
	case !reachable:
		skip("Cache schema", "cache not reachable")
	case !versioned:
		skip("Cache schema", "backend has no schema")
	default:
		report("Cache schema", checkSchema(migrator))
	}

	// Check 6: server
	serverUp := report("Server health", checkServer(ctx))

	// Check 7: session
	if serverUp {
		if ctx.Service.Session().Validate() {
			id := ctx.Service.Session().Identity()
			ctx.Printf("✓ Session: OK (%s)\n", id.Email)
		} else {
			warn("Session", errors.New("not signed in; run `pibble login`"))
		}
	} else {
		skip("Session", "server not reachable")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	if ctx.Config == nil {
		return errors.New("no configuration loaded")
	}
	return ctx.Config.Validate()
}

func checkZone(ctx *cli.Context) error {
	zone := ctx.Zone()
	if zone == nil {
		return errors.New("reference zone not set")
	}
	now := ctx.Service.Now()
	label := duedate.ZoneLabel(now, zone)
	if label == "" {
		return fmt.Errorf("zone %s has no abbreviation", zone)
	}
	ctx.Printf("   %s is %s\n", zone, duedate.Clock(now, zone))
	return nil
}

func checkCacheReachable(ctx *cli.Context) error {
	if ctx.CacheErr != nil {
		return ctx.CacheErr
	}
	if ctx.Cache == nil {
		return errors.New("no cache configured")
	}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	_, err := ctx.Cache.Get(reqCtx, cache.OwnerPrefix("")+"doctor")
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return fmt.Errorf("%s: %w", ctx.Cache.Location(), err)
	}
	return nil
}

func checkSchema(m cache.Migrator) error {
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d; run `pibble cache migrate`", current, latest)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported (%d) - please upgrade pibble", current, latest)
	}
	return nil
}

func checkServer(ctx *cli.Context) error {
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	_, err := ctx.Service.Health(reqCtx)
	return err
}
