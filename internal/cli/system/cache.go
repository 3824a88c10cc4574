package system

import (
	"fmt"

	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/cli"
)

type CacheClearCmd struct{}

func (c *CacheClearCmd) Run(ctx *cli.Context) error {
	if ctx.CacheErr != nil {
		return fmt.Errorf("cache unavailable: %w", ctx.CacheErr)
	}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	if err := ctx.Service.ClearCache(reqCtx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	ctx.Printf("✓ Cleared cached responses in %s\n", ctx.Cache.Location())
	return nil
}

type CacheMigrateCmd struct{}

func (c *CacheMigrateCmd) Run(ctx *cli.Context) error {
	if ctx.CacheErr != nil {
		return fmt.Errorf("cache unavailable: %w", ctx.CacheErr)
	}
	migrator, ok := ctx.Cache.(cache.Migrator)
	if !ok {
		ctx.Printf("%s has no schema to migrate.\n", ctx.Cache.Location())
		return nil
	}

	count, err := migrator.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Cache is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
