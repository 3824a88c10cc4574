package tasks

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
)

type TaskAddCmd struct {
	GroupID string `arg:"" help:"Group id."`
	Title   string `help:"Task title." required:""`
	Type    string `short:"t" help:"ASSIGNMENT, QUIZ, LECTURE, EXAM or OTHER." default:"ASSIGNMENT"`
	Due     string `short:"d" help:"Due wall clock in the reference zone, 'YYYY-MM-DD HH:MM'." required:""`
	Penalty int    `short:"p" help:"HP lost when missed." default:"10"`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	taskType, err := models.ParseTaskType(c.Type)
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	out, err := ctx.Service.CreateTask(reqCtx, c.GroupID, service.TaskInput{
		Title:   c.Title,
		Type:    taskType,
		Due:     c.Due,
		Penalty: c.Penalty,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added %q (%s, -%d HP)\n", out.Title, out.Type, out.Penalty)
	ctx.Printf("  Due: %s\n", duedate.DisplayString(out.DueAt, ctx.Zone()))
	ctx.Printf("  Task id: %s\n", out.ID)
	return nil
}
