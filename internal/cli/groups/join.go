package groups

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
)

type GroupsJoinCmd struct {
	InviteCode string `arg:"" help:"Invite code shared by a group member."`
}

func (c *GroupsJoinCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	group, err := ctx.Service.JoinGroup(reqCtx, models.JoinGroupRequest{InviteCode: c.InviteCode})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Joined %s (%s) as %s\n", group.Name, group.Class.Label(), group.Role)
	ctx.Printf("  Group id: %s\n", group.ID)
	return nil
}
