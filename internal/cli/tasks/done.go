package tasks

import (
	"fmt"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
)

type TaskDoneCmd struct {
	TaskID  string `arg:"" help:"Task id."`
	Group   string `short:"g" help:"Group the task belongs to." required:""`
	Percent int    `help:"Grade percent (0-100)." default:"-1"`
	Letter  string `help:"Grade letter, e.g. B+."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	req := models.CompleteTaskRequest{Status: models.TaskStatusDone}
	if c.Percent >= 0 {
		if c.Letter != "" {
			return fmt.Errorf("use either --percent or --letter, not both")
		}
		p := c.Percent
		req.GradePercent = &p
	} else if c.Percent != -1 {
		return fmt.Errorf("grade percent must be between 0 and 100")
	}
	if c.Letter != "" {
		l := c.Letter
		req.GradeLetter = &l
	}

	if err := setStatus(ctx, c.Group, c.TaskID, req); err != nil {
		return err
	}
	msg := "✓ Marked done"
	if req.GradeLetter != nil {
		msg += fmt.Sprintf(" (grade %s)", *req.GradeLetter)
	} else if req.GradePercent != nil {
		msg += fmt.Sprintf(" (grade %d%%)", *req.GradePercent)
	}
	ctx.Println(msg)
	return nil
}

type TaskUndoCmd struct {
	TaskID string `arg:"" help:"Task id."`
	Group  string `short:"g" help:"Group the task belongs to." required:""`
}

func (c *TaskUndoCmd) Run(ctx *cli.Context) error {
	if err := setStatus(ctx, c.Group, c.TaskID, models.CompleteTaskRequest{Status: models.TaskStatusNotDone}); err != nil {
		return err
	}
	ctx.Println("✓ Marked not done")
	return nil
}

// TaskExcuseCmd is only accepted by the server from instructors
type TaskExcuseCmd struct {
	TaskID string `arg:"" help:"Task id."`
	Group  string `short:"g" help:"Group the task belongs to." required:""`
}

func (c *TaskExcuseCmd) Run(ctx *cli.Context) error {
	if err := setStatus(ctx, c.Group, c.TaskID, models.CompleteTaskRequest{Status: models.TaskStatusExcused}); err != nil {
		return err
	}
	ctx.Println("✓ Marked excused")
	return nil
}

func setStatus(ctx *cli.Context, groupID, taskID string, req models.CompleteTaskRequest) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	return ctx.Service.CompleteTask(reqCtx, groupID, taskID, req)
}
