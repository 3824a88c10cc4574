package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/config"
	"github.com/julianstephens/pibble/internal/service"
)

// Context is passed to every command's Run method
type Context struct {
	Config  *config.Config
	Service *service.Service
	Cache   cache.Provider
	// CacheErr is set when the configured cache could not be opened and
	// Cache fell back to process memory.
	CacheErr error
	Out      io.Writer
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Println(a ...any) {
	fmt.Fprintln(c.out(), a...)
}

func (c *Context) Printf(format string, a ...any) {
	fmt.Fprintf(c.out(), format, a...)
}

// Timeout bounds one command's network work
func (c *Context) Timeout() (context.Context, context.CancelFunc) {
	d := 30 * time.Second
	if c.Config != nil && c.Config.HTTPTimeout > 0 {
		d = 2 * c.Config.HTTPTimeout
	}
	return context.WithTimeout(context.Background(), d)
}

// Zone is the reference zone used for display and due-date entry
func (c *Context) Zone() *time.Location {
	return c.Service.Zone()
}

// RequireSession fails fast when nobody is signed in
func (c *Context) RequireSession() error {
	if !c.Service.Session().Validate() {
		return fmt.Errorf("not signed in; run `pibble login` or `pibble register` first")
	}
	return nil
}
