package groups

import (
	"fmt"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/service"
	"github.com/julianstephens/pibble/internal/utils"
)

type GroupsListCmd struct {
	Offline bool `help:"Show the last fetched list without contacting the server."`
}

func (c *GroupsListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	mode := service.LiveOrCached
	if c.Offline {
		mode = service.CachedOnly
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	groups, err := ctx.Service.MyGroups(reqCtx, mode)
	if err != nil {
		return err
	}

	if groups.Offline {
		ctx.Printf("(offline, %s)\n", utils.UpdatedAgo(groups.FetchedAt, ctx.Service.Now()))
	}
	if len(groups.Groups) == 0 {
		ctx.Println("No groups yet. Create one with `pibble groups create` or join with `pibble groups join CODE`.")
		return nil
	}

	ctx.Println("Groups:")
	for _, g := range groups.Groups {
		ctx.Printf("  %s  [%s, %s]  %s\n", g.Name, g.Mode, g.Role, g.Class.Label())
		line := "      id " + g.ID + "  invite " + g.InviteCode
		if g.PetHealth != nil && g.PetMaxHealth != nil {
			line += "  pet " + hp(*g.PetHealth, *g.PetMaxHealth)
		}
		ctx.Println(line)
	}
	return nil
}

func hp(health, max int) string {
	return fmt.Sprintf("%d/%d HP", health, max)
}
