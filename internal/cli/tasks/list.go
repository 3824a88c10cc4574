package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
	"github.com/julianstephens/pibble/internal/taskview"
	"github.com/julianstephens/pibble/internal/utils"
)

type TasksCmd struct {
	GroupID string   `arg:"" help:"Group id."`
	Search  string   `short:"q" help:"Case-insensitive title search."`
	Due     string   `short:"d" help:"Due window: all, overdue, today, next_7d, next_30d." default:"all"`
	Status  string   `short:"s" help:"Status: all, done, not_done." default:"all"`
	Type    []string `short:"t" help:"Only these task types (repeatable)."`
	Sort    string   `help:"Sort by: due_date, penalty, title." default:"due_date"`
	Offline bool     `help:"Use the last fetched state without contacting the server."`
	ShowIDs bool     `help:"Show task ids." name:"show-ids"`
}

// Filter builds the view filter from the flags
func (c *TasksCmd) Filter() (taskview.Filter, error) {
	f := taskview.DefaultFilter()
	f.Search = c.Search
	f.Due = taskview.ParseDueFilter(c.Due)
	f.Status = taskview.ParseStatusFilter(c.Status)
	f.Sort = taskview.ParseSortBy(c.Sort)

	if len(c.Type) > 0 {
		for _, t := range models.TaskTypes {
			f.Types[t] = false
		}
		for _, raw := range c.Type {
			t, err := models.ParseTaskType(raw)
			if err != nil {
				return taskview.Filter{}, err
			}
			f.Types[t] = true
		}
	}
	return f.Normalized(), nil
}

func (c *TasksCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	filter, err := c.Filter()
	if err != nil {
		return err
	}

	mode := service.LiveOrCached
	if c.Offline {
		mode = service.CachedOnly
	}
	reqCtx, cancel := ctx.Timeout()
	defer cancel()
	snap, err := ctx.Service.GroupState(reqCtx, c.GroupID, mode)
	if err != nil {
		return err
	}

	now := ctx.Service.Now()
	zone := ctx.Zone()
	state := snap.State
	view := taskview.Build(state.Tasks, filter, now, zone)

	ctx.Printf("%s · %s\n", state.Group.Name, state.Group.Class.Label())
	ctx.Printf("%s · %s\n", view.Summary(), utils.UpdatedAgo(snap.FetchedAt, now))
	if snap.Offline {
		ctx.Println("(offline)")
	}

	if len(view.Rows) == 0 {
		ctx.Println(view.EmptyMessage(state.CanCreateTasks()))
		return nil
	}

	for _, row := range view.Rows {
		ctx.Println(formatRow(row, c.ShowIDs, now, zone))
	}
	return nil
}

func formatRow(row taskview.Row, showIDs bool, now time.Time, zone *time.Location) string {
	t := row.Task
	var b strings.Builder

	b.WriteString(checkbox(t.MyStatus))
	b.WriteString(" ")
	b.WriteString(t.Title)
	fmt.Fprintf(&b, " (%s, -%d HP)", t.Type, t.Penalty)
	b.WriteString(" · due ")
	b.WriteString(row.DueLabel(zone))
	if row.DueValid {
		fmt.Fprintf(&b, " (%s)", utils.RelativeDue(row.Due, now))
	}
	if row.Overdue {
		b.WriteString(" · OVERDUE")
	}
	if grade := t.GradeLabel(); grade != "" {
		b.WriteString(" · grade ")
		b.WriteString(grade)
	} else if row.NeedsGrade {
		b.WriteString(" · needs grade")
	}
	if t.Stats.TotalCount > 0 {
		fmt.Fprintf(&b, " · %d/%d done", t.Stats.DoneCount, t.Stats.TotalCount)
	}
	if showIDs {
		fmt.Fprintf(&b, "\n      id: %s", t.ID)
	}
	return b.String()
}

func checkbox(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusDone:
		return "[✓]"
	case models.TaskStatusExcused:
		return "[~]"
	}
	return "[ ]"
}
