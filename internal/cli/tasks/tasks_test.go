package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/pibble/internal/cli/clitest"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/taskview"
)

func TestTasksCmdFilter(t *testing.T) {
	tests := []struct {
		name    string
		cmd     TasksCmd
		wantErr bool
		check   func(t *testing.T, f taskview.Filter)
	}{
		{
			name: "defaults",
			cmd:  TasksCmd{Due: "all", Status: "all", Sort: "due_date"},
			check: func(t *testing.T, f taskview.Filter) {
				if f.Active() {
					t.Errorf("default flags should not filter: %+v", f)
				}
			},
		},
		{
			name: "lowercase enums",
			cmd:  TasksCmd{Due: "next_7d", Status: "not_done", Sort: "penalty"},
			check: func(t *testing.T, f taskview.Filter) {
				if f.Due != taskview.DueNext7D || f.Status != taskview.StatusNotDone || f.Sort != taskview.SortPenalty {
					t.Errorf("got %+v", f)
				}
			},
		},
		{
			name: "types narrow the set",
			cmd:  TasksCmd{Type: []string{"exam", "QUIZ"}},
			check: func(t *testing.T, f taskview.Filter) {
				for _, tt := range models.TaskTypes {
					want := tt == models.TaskTypeExam || tt == models.TaskTypeQuiz
					if f.TypeEnabled(tt) != want {
						t.Errorf("TypeEnabled(%s) = %v, want %v", tt, !want, want)
					}
				}
			},
		},
		{
			name:    "unknown type",
			cmd:     TasksCmd{Type: []string{"HOMEWORK"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.cmd.Filter()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Filter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestFormatRow(t *testing.T) {
	zone, _ := time.LoadLocation("America/Los_Angeles")
	now := clitest.Now
	percent := 92

	tests := []struct {
		name string
		task models.Task
		want []string
	}{
		{
			name: "open graded task",
			task: models.Task{Title: "Essay", Type: models.TaskTypeAssignment, DueAt: "2025-03-02T08:00:00.000Z", Penalty: 10},
			want: []string{"[ ] Essay", "(ASSIGNMENT, -10 HP)", "Mar 02, 2025 12:00 AM PST", "needs grade"},
		},
		{
			name: "overdue",
			task: models.Task{Title: "Reading", Type: models.TaskTypeLecture, DueAt: "2025-02-28T08:00:00.000Z", Penalty: 5},
			want: []string{"[ ] Reading", "OVERDUE"},
		},
		{
			name: "done with grade",
			task: models.Task{Title: "Midterm", Type: models.TaskTypeExam, DueAt: "2025-02-28T08:00:00.000Z", MyStatus: models.TaskStatusDone, MyGradePercent: &percent},
			want: []string{"[✓] Midterm", "grade 92%"},
		},
		{
			name: "unparsable due",
			task: models.Task{Title: "Mystery", Type: models.TaskTypeOther, DueAt: "soon", MyStatus: models.TaskStatusExcused},
			want: []string{"[~] Mystery", "due soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRow(taskview.Derive(tt.task, now), false, now, zone)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatRow() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	h := clitest.New(t)
	group := h.DemoGroup(t, models.GroupModeFriend)

	add := &TaskAddCmd{GroupID: group.ID, Title: "Essay", Type: "assignment", Due: "2025-03-02 00:00", Penalty: 15}
	if err := add.Run(h.Ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(h.Out.String(), "Mar 02, 2025 12:00 AM PST") {
		t.Errorf("add output:\n%s", h.Out)
	}
	if got := h.Server.LastRequest().Body; !strings.Contains(string(got), `"2025-03-02T08:00:00.000Z"`) {
		t.Errorf("due sent as %s", got)
	}

	list := &TasksCmd{GroupID: group.ID, Due: "all", Status: "all", Sort: "due_date", ShowIDs: true}
	h.Out.Reset()
	if err := list.Run(h.Ctx); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	out := h.Out.String()
	if !strings.Contains(out, "Showing 1 of 1") || !strings.Contains(out, "[ ] Essay") {
		t.Fatalf("tasks output:\n%s", out)
	}
	idx := strings.Index(out, "id: ")
	if idx == -1 {
		t.Fatalf("no task id in output:\n%s", out)
	}
	taskID := strings.TrimSpace(strings.SplitN(out[idx+4:], "\n", 2)[0])

	h.Out.Reset()
	if err := (&TaskDoneCmd{TaskID: taskID, Group: group.ID, Percent: 88}).Run(h.Ctx); err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(h.Out.String(), "grade 88%") {
		t.Errorf("done output:\n%s", h.Out)
	}

	h.Out.Reset()
	if err := list.Run(h.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.Out.String(), "[✓] Essay") {
		t.Errorf("task should show done:\n%s", h.Out)
	}

	if err := (&TaskEditCmd{TaskID: taskID, Group: group.ID, Penalty: 30}).Run(h.Ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := (&TaskUndoCmd{TaskID: taskID, Group: group.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := (&TaskDeleteCmd{TaskID: taskID, Group: group.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	h.Out.Reset()
	if err := list.Run(h.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.Out.String(), "No tasks yet") {
		t.Errorf("expected empty group:\n%s", h.Out)
	}
}

func TestTaskDoneGradeFlags(t *testing.T) {
	h := clitest.New(t)
	group := h.DemoGroup(t, models.GroupModeFriend)

	tests := []struct {
		name string
		cmd  TaskDoneCmd
	}{
		{"percent and letter", TaskDoneCmd{TaskID: "x", Group: group.ID, Percent: 90, Letter: "A"}},
		{"negative percent", TaskDoneCmd{TaskID: "x", Group: group.ID, Percent: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(h.Server.Requests())
			if err := tt.cmd.Run(h.Ctx); err == nil {
				t.Fatal("expected an error")
			}
			if len(h.Server.Requests()) != before {
				t.Error("invalid flags should not reach the server")
			}
		})
	}
}

func TestTaskAddRejectsBadDueLocally(t *testing.T) {
	h := clitest.New(t)
	group := h.DemoGroup(t, models.GroupModeFriend)
	before := len(h.Server.Requests())

	add := &TaskAddCmd{GroupID: group.ID, Title: "Essay", Type: "ASSIGNMENT", Due: "2025-03-02", Penalty: 10}
	if err := add.Run(h.Ctx); err == nil {
		t.Fatal("a due date without a time should be rejected")
	}
	if len(h.Server.Requests()) != before {
		t.Error("rejected input should not reach the server")
	}
}

func TestTasksRequireSession(t *testing.T) {
	h := clitest.New(t)
	if err := (&TasksCmd{GroupID: "g"}).Run(h.Ctx); err == nil {
		t.Error("listing tasks signed out should fail")
	}
	if len(h.Server.Requests()) != 0 {
		t.Error("signed-out commands should not call the server")
	}
}
