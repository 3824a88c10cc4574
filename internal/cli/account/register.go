package account

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
)

type RegisterCmd struct {
	Email       string `arg:"" help:"Account email."`
	DisplayName string `short:"n" help:"Name shown to your group." required:""`
	Password    string `short:"p" help:"Password (prompted when omitted)." env:"PIBBLE_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptSecret("Choose a password"); err != nil {
			return err
		}
	}

	req := models.RegisterRequest{Email: c.Email, DisplayName: c.DisplayName, Password: password}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()

	id, err := ctx.Service.Register(reqCtx, req)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Registered and signed in as %s <%s>\n", id.DisplayName, id.Email)
	return nil
}
