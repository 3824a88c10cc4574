package account

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `short:"p" help:"Password (prompted when omitted)." env:"PIBBLE_PASSWORD"`
	Demo     bool   `help:"Use a demo identity; no password or account needed."`
	Name     string `short:"n" help:"Display name for a demo identity."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if c.Demo {
		id, err := ctx.Service.LoginDemo(c.Email, c.Name)
		if err != nil {
			return err
		}
		ctx.Printf("✓ Using demo identity %s <%s>\n", id.DisplayName, id.Email)
		return nil
	}

	password := c.Password
	if password == "" {
		var err error
		if password, err = promptSecret("Password"); err != nil {
			return err
		}
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	id, err := ctx.Service.Login(reqCtx, models.LoginRequest{Email: c.Email, Password: password})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Signed in as %s <%s>\n", id.DisplayName, id.Email)
	return nil
}
