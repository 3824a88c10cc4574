package system

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/duedate"
)

// ClockCmd prints the current time in the reference zone
type ClockCmd struct{}

func (c *ClockCmd) Run(ctx *cli.Context) error {
	now := ctx.Service.Now()
	zone := ctx.Zone()
	ctx.Printf("%s (%s)\n", duedate.Clock(now, zone), zone.String())
	return nil
}
