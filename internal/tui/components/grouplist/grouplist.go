// Package grouplist is the groups screen: the groups the viewer belongs to.
package grouplist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pibble/internal/models"
)

type OpenGroupMsg struct {
	Group models.GroupSummary
}

type CreateGroupMsg struct{}

type JoinGroupMsg struct{}

type Item struct {
	Group models.GroupSummary
}

func (i Item) Title() string {
	return i.Group.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s · %s · %s", i.Group.Class.Label(), i.Group.Mode, i.Group.Role)
	if i.Group.PetHealth != nil && i.Group.PetMaxHealth != nil {
		desc += fmt.Sprintf(" · %d/%d HP", *i.Group.PetHealth, *i.Group.PetMaxHealth)
	}
	if i.Group.InviteCode != "" {
		desc += " · invite " + i.Group.InviteCode
	}
	return desc
}

func (i Item) FilterValue() string { return i.Group.Name + " " + i.Group.Class.Code }

type KeyMap struct {
	Open   key.Binding
	Create key.Binding
	Join   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Create: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create group"),
		),
		Join: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "join by invite"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(groups []models.GroupSummary, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Groups"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Create, keys.Join}
	}

	m := Model{list: l, keys: keys}
	m.SetGroups(groups)
	return m
}

func (m *Model) SetGroups(groups []models.GroupSummary) {
	items := make([]list.Item, len(groups))
	for i, g := range groups {
		items[i] = Item{Group: g}
	}
	m.list.SetItems(items)
}

// Filtering reports whether the list's own filter input has focus
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenGroupMsg(i) }
			}
			return m, nil
		case key.Matches(msg, m.keys.Create):
			return m, func() tea.Msg { return CreateGroupMsg{} }
		case key.Matches(msg, m.keys.Join):
			return m, func() tea.Msg { return JoinGroupMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  You are not in any groups yet.\n  Press 'c' to create one or 'i' to join with an invite code."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
