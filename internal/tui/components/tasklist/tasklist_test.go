package tasklist

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/taskview"
)

var now = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func zone(t *testing.T) *time.Location {
	t.Helper()
	z, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	return z
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestItemText(t *testing.T) {
	z := zone(t)
	letter := "B+"
	tests := []struct {
		name      string
		task      models.Task
		wantTitle string
		wantDesc  []string
	}{
		{
			name:      "overdue",
			task:      models.Task{Title: "Reading", Type: models.TaskTypeLecture, DueAt: "2025-02-28T08:00:00.000Z", Penalty: 5},
			wantTitle: "[ ] Reading · OVERDUE",
			wantDesc:  []string{"LECTURE · -5 HP", "due Feb 28, 2025 12:00 AM PST"},
		},
		{
			name:      "graded",
			task:      models.Task{Title: "Essay", Type: models.TaskTypeAssignment, DueAt: "2025-03-02T08:00:00.000Z", MyStatus: models.TaskStatusDone, MyGradeLetter: &letter, Stats: models.TaskStats{DoneCount: 2, TotalCount: 3}},
			wantTitle: "[✓] Essay",
			wantDesc:  []string{"grade B+", "2/3 done"},
		},
		{
			name:      "raw due",
			task:      models.Task{Title: "Mystery", Type: models.TaskTypeOther, DueAt: "later", MyStatus: models.TaskStatusExcused},
			wantTitle: "[~] Mystery",
			wantDesc:  []string{"due later"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{Row: taskview.Derive(tt.task, now), zone: z, now: now}
			if got := item.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			desc := item.Description()
			for _, w := range tt.wantDesc {
				if !strings.Contains(desc, w) {
					t.Errorf("Description() = %q, missing %q", desc, w)
				}
			}
		})
	}
}

func TestEmptyHint(t *testing.T) {
	z := zone(t)
	m := New(60, 20)

	m.SetView(taskview.View{}, true, now, z)
	if !strings.Contains(m.View(), "Press 'a'") {
		t.Errorf("creatable empty group should hint at adding:\n%s", m.View())
	}

	m.SetView(taskview.View{}, false, now, z)
	if strings.Contains(m.View(), "Press 'a'") {
		t.Errorf("read-only group should not hint at adding:\n%s", m.View())
	}

	// Everything filtered out: no add hint.
	m.SetView(taskview.View{Total: 3}, true, now, z)
	if strings.Contains(m.View(), "Press 'a'") {
		t.Errorf("filtered-out view should not hint at adding:\n%s", m.View())
	}
}

func TestKeysEmitMessages(t *testing.T) {
	z := zone(t)
	task := models.Task{ID: "t1", Title: "Essay", Type: models.TaskTypeAssignment, DueAt: "2025-03-02T08:00:00.000Z"}
	view := taskview.Build([]models.Task{task}, taskview.DefaultFilter(), now, z)

	m := New(60, 20)
	m.SetView(view, true, now, z)

	tests := []struct {
		key   string
		check func(msg tea.Msg) bool
	}{
		{"a", func(msg tea.Msg) bool { _, ok := msg.(AddTaskMsg); return ok }},
		{"e", func(msg tea.Msg) bool { e, ok := msg.(EditTaskMsg); return ok && e.Row.Task.ID == "t1" }},
		{"x", func(msg tea.Msg) bool { d, ok := msg.(DeleteTaskMsg); return ok && d.Task.ID == "t1" }},
		{"enter", func(msg tea.Msg) bool { d, ok := msg.(ToggleDoneMsg); return ok && d.Row.Task.ID == "t1" }},
		{"n", func(msg tea.Msg) bool { d, ok := msg.(NudgeMsg); return ok && d.Task.ID == "t1" }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, cmd := m.Update(keyMsg(tt.key))
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if msg := cmd(); !tt.check(msg) {
				t.Errorf("key %q produced %#v", tt.key, msg)
			}
		})
	}
}

func TestAddIgnoredWhenReadOnly(t *testing.T) {
	m := New(60, 20)
	m.SetView(taskview.View{}, false, now, zone(t))
	if _, cmd := m.Update(keyMsg("a")); cmd != nil {
		t.Error("students in instructor groups cannot add tasks")
	}
}
