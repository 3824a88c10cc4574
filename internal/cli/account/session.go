package account

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/pibble/internal/cli"
)

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	if err := ctx.Service.Logout(reqCtx); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	session := ctx.Service.Session()
	if !session.Validate() {
		ctx.Println("Not signed in")
		return nil
	}

	id := session.Identity()
	kind := "account"
	if id.Demo {
		kind = "demo identity"
	}
	ctx.Printf("%s <%s> (%s)\n", id.DisplayName, id.Email, kind)
	if exp, ok := session.ExpiresAt(); ok {
		ctx.Printf("Session expires %s\n", humanize.RelTime(exp, time.Now(), "ago", "from now"))
	}
	return nil
}
