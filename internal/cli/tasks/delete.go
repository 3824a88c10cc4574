package tasks

import (
	"github.com/julianstephens/pibble/internal/cli"
)

type TaskDeleteCmd struct {
	TaskID string `arg:"" help:"Task id."`
	Group  string `short:"g" help:"Group the task belongs to." required:""`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	if err := ctx.Service.DeleteTask(reqCtx, c.Group, c.TaskID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted task %s\n", c.TaskID)
	return nil
}
