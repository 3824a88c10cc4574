package groups

import (
	"strings"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
)

type GroupsCreateCmd struct {
	Name          string `arg:"" help:"Group name."`
	ClassCode     string `short:"c" help:"Class code, e.g. 'CS 101'." required:""`
	Term          string `short:"t" help:"Term, e.g. 'Spring 2025'." required:""`
	School        string `short:"s" help:"School (optional)."`
	Mode          string `short:"m" help:"FRIEND or INSTRUCTOR." default:"FRIEND" enum:"FRIEND,INSTRUCTOR,friend,instructor"`
	InitialHealth int    `help:"Starting pet health (1-1000)." default:"100"`
}

func (c *GroupsCreateCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	req := models.CreateGroupRequest{
		ClassCode:     c.ClassCode,
		Term:          c.Term,
		Mode:          models.GroupMode(strings.ToUpper(c.Mode)),
		GroupName:     c.Name,
		InitialHealth: c.InitialHealth,
	}
	if c.School != "" {
		req.School = &c.School
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	group, err := ctx.Service.CreateGroup(reqCtx, req)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Created %s (%s)\n", group.Name, group.Class.Label())
	ctx.Printf("  Invite code: %s\n", group.InviteCode)
	ctx.Printf("  Group id:    %s\n", group.ID)
	return nil
}
