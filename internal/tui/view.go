package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/utils"
)

var formTitles = map[constants.SessionState]string{
	constants.StateCreateGroup:  "Create a group",
	constants.StateJoinGroup:    "Join a group",
	constants.StateCreateTask:   "New task",
	constants.StateEditTask:     "Edit task",
	constants.StateGradeEntry:   "Mark done",
	constants.StateFilters:      "Filter tasks",
	constants.StateNudge:        "Send a nudge",
	constants.StateConfirmation: "Confirm",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLogin:
		content = m.viewAuth()
	case constants.StateLoading:
		content = docStyle.Render(m.spinner.View() + " Signing in…")
	case constants.StateGroups:
		content = m.viewGroups()
	case constants.StateDashboard:
		content = m.viewDashboard()
	default:
		content = m.viewForm()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewMessages(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := constants.DisplayName
	if m.state == constants.StateDashboard && m.groupName != "" {
		title = m.groupName
	}
	left := titleStyle.Render(title)
	if m.snapshot != nil && m.state == constants.StateDashboard {
		g := m.snapshot.State.Group
		left += subtleStyle.Render(fmt.Sprintf("  %s · %s", g.Class.Label(), g.Mode))
	}
	if id := m.svc.Session().Identity(); id != nil && m.state != constants.StateLogin {
		who := id.DisplayName
		if id.Demo {
			who += " (demo)"
		}
		left += subtleStyle.Render("  " + who)
	}
	clock := clockStyle.Render(duedate.Clock(m.now, m.svc.Zone()))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + clock
}

func (m Model) viewMessages() string {
	var lines []string
	if m.lastError != "" {
		lines = append(lines, dangerStyle.Render("✗ "+m.lastError))
	}
	if m.status != "" {
		lines = append(lines, successStyle.Render("✓ "+m.status))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewAuth() string {
	var parts []string
	if m.formError != "" {
		parts = append(parts, warningStyle.Render(m.formError))
	}
	parts = append(parts, m.form.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	parts := []string{titleStyle.Render(formTitles[m.state])}
	if m.formError != "" {
		parts = append(parts, dangerStyle.Render(m.formError))
	}
	parts = append(parts, m.form.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewGroups() string {
	status := utils.UpdatedAgo(m.groupsFetched, m.now)
	if m.groupsOffline {
		status += " · offline"
	}
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		subtleStyle.Render(fmt.Sprintf("%s · %s", utils.Count(len(m.groups), "group"), status)),
		m.groupList.View(),
	))
}

func (m Model) viewDashboard() string {
	if m.snapshot == nil {
		if m.loading {
			return docStyle.Render(m.spinner.View() + " Loading " + m.groupName + "…")
		}
		return docStyle.Render(subtleStyle.Render("Nothing to show yet. Press r to retry."))
	}

	status := []string{m.view.Summary(), utils.UpdatedAgo(m.snapshot.FetchedAt, m.now)}
	if m.snapshot.Offline {
		status = append(status, warningStyle.Render("offline"))
	}
	if m.loading {
		status = append(status, m.spinner.View())
	}
	if m.filter.Active() {
		status = append(status, "filtered")
	}
	status = append(status, "sort: "+m.filter.Normalized().Sort.Label())

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.petModel.View(),
		"",
		subtleStyle.Render(strings.Join(status, " · ")),
		m.taskList.View(),
	)
	side := paneStyle.Render(m.sidebar.View())

	return docStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", side))
}
