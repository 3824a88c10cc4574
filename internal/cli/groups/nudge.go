package groups

import (
	"fmt"
	"strings"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
)

type NudgeCmd struct {
	GroupID string `arg:"" help:"Group id."`
	To      string `help:"Recipient user id or display name." required:""`
	Task    string `help:"Task id the nudge is about."`
	Message string `short:"m" help:"Optional message."`
}

func (c *NudgeCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()

	snap, err := ctx.Service.GroupState(reqCtx, c.GroupID, service.Live)
	if err != nil {
		return err
	}
	recipient, err := resolveMember(snap.State, c.To)
	if err != nil {
		return err
	}

	req := models.NudgeRequest{ToUserID: recipient.ID}
	if c.Task != "" {
		req.TaskID = &c.Task
	}
	if c.Message != "" {
		req.Message = &c.Message
	}
	if err := ctx.Service.Nudge(reqCtx, c.GroupID, req); err != nil {
		return err
	}
	ctx.Printf("✓ Nudged %s\n", recipient.DisplayName)
	return nil
}

// resolveMember matches a user id exactly or a display name case-insensitively
func resolveMember(state *models.GroupState, who string) (models.UserRef, error) {
	who = strings.TrimSpace(who)
	var byName []models.UserRef
	for _, m := range state.Members() {
		if m.ID == who {
			return m, nil
		}
		if strings.EqualFold(m.DisplayName, who) {
			byName = append(byName, m)
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
		return models.UserRef{}, fmt.Errorf("no group member matches %q", who)
	}
	return models.UserRef{}, fmt.Errorf("%q matches %d members; use a user id", who, len(byName))
}
