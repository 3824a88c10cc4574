package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/taskview"
	"github.com/julianstephens/pibble/internal/utils"
)

type AddTaskMsg struct{}

type DeleteTaskMsg struct {
	Task models.Task
}

type EditTaskMsg struct {
	Row taskview.Row
}

// ToggleDoneMsg asks to flip a task between DONE and NOT_DONE
type ToggleDoneMsg struct {
	Row taskview.Row
}

type NudgeMsg struct {
	Task models.Task
}

type Item struct {
	Row  taskview.Row
	zone *time.Location
	now  time.Time
}

func (i Item) Title() string {
	t := i.Row.Task
	box := "[ ]"
	switch t.MyStatus {
	case models.TaskStatusDone:
		box = "[✓]"
	case models.TaskStatusExcused:
		box = "[~]"
	}
	title := fmt.Sprintf("%s %s", box, t.Title)
	if i.Row.Overdue {
		title += " · OVERDUE"
	}
	return title
}

func (i Item) Description() string {
	t := i.Row.Task
	parts := []string{
		fmt.Sprintf("%s · -%d HP", t.Type, t.Penalty),
		"due " + i.Row.DueLabel(i.zone),
	}
	if i.Row.DueValid {
		parts[1] += " (" + utils.RelativeDue(i.Row.Due, i.now) + ")"
	}
	if grade := t.GradeLabel(); grade != "" {
		parts = append(parts, "grade "+grade)
	}
	if t.Stats.TotalCount > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d done", t.Stats.DoneCount, t.Stats.TotalCount))
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Row.Task.Title }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding
	Nudge  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "done/undo"),
		),
		Nudge: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "nudge"),
		),
	}
}

type Model struct {
	list      list.Model
	keys      KeyMap
	canCreate bool
	empty     string
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	// Filtering is driven by taskview, not the list's fuzzy filter.
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Edit, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// SetView replaces the visible rows, keeping the cursor when possible
func (m *Model) SetView(view taskview.View, canCreate bool, now time.Time, zone *time.Location) {
	items := make([]list.Item, len(view.Rows))
	for i, r := range view.Rows {
		items[i] = Item{Row: r, zone: zone, now: now}
	}
	m.list.SetItems(items)
	m.canCreate = canCreate
	m.empty = view.EmptyMessage(canCreate)
	if view.Total == 0 && canCreate {
		m.empty += "\n  Press 'a' to add one."
	}
}

// Selected returns the row under the cursor
func (m Model) Selected() (taskview.Row, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Row, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			if m.canCreate {
				return m, func() tea.Msg { return AddTaskMsg{} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			if row, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditTaskMsg{Row: row} }
			}
		case key.Matches(msg, m.keys.Delete):
			if row, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteTaskMsg{Task: row.Task} }
			}
		case key.Matches(msg, m.keys.Toggle):
			if row, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleDoneMsg{Row: row} }
			}
		case key.Matches(msg, m.keys.Nudge):
			if row, ok := m.Selected(); ok {
				return m, func() tea.Msg { return NudgeMsg{Task: row.Task} }
			}
			return m, func() tea.Msg { return NudgeMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
