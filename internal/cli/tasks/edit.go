package tasks

import (
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
)

// TaskEditCmd changes only the flags that were given
type TaskEditCmd struct {
	TaskID  string `arg:"" help:"Task id."`
	Group   string `short:"g" help:"Group the task belongs to." required:""`
	Title   string `help:"New title."`
	Type    string `short:"t" help:"New task type."`
	Due     string `short:"d" help:"New due wall clock, 'YYYY-MM-DD HH:MM'."`
	Penalty int    `short:"p" help:"New penalty."`
}

// Edit maps the flags onto a partial update
func (c *TaskEditCmd) Edit() (service.TaskEdit, error) {
	var edit service.TaskEdit
	if c.Title != "" {
		edit.Title = &c.Title
	}
	if c.Type != "" {
		t, err := models.ParseTaskType(c.Type)
		if err != nil {
			return service.TaskEdit{}, err
		}
		edit.Type = &t
	}
	if c.Due != "" {
		edit.Due = &c.Due
	}
	if c.Penalty != 0 {
		edit.Penalty = &c.Penalty
	}
	return edit, nil
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	edit, err := c.Edit()
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	out, err := ctx.Service.UpdateTask(reqCtx, c.Group, c.TaskID, edit)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated %q (%s, -%d HP, due %s)\n",
		out.Title, out.Type, out.Penalty, duedate.DisplayString(out.DueAt, ctx.Zone()))
	return nil
}
