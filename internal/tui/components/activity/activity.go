// Package activity renders the dashboard's recent events and leaderboard.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/utils"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Describe renders one event the way the group mode shows it.
// Friend groups name the actor and target; instructor groups show the
// server's message.
func Describe(e models.EventOut, mode models.GroupMode) string {
	var b strings.Builder
	if mode == models.GroupModeFriend {
		actor := "System"
		if e.Actor != nil && e.Actor.DisplayName != "" {
			actor = e.Actor.DisplayName
		}
		b.WriteString(actor + " " + string(e.Type))
		if d := delta(e); d != "" {
			b.WriteString(" " + d)
		}
		if e.Target != nil && e.Target.DisplayName != "" {
			b.WriteString(" → " + e.Target.DisplayName)
		}
		return b.String()
	}

	if e.Message != nil && *e.Message != "" {
		b.WriteString(*e.Message)
	} else {
		b.WriteString(string(e.Type))
	}
	if d := delta(e); d != "" {
		b.WriteString(" " + d)
	}
	return b.String()
}

func delta(e models.EventOut) string {
	if e.Delta == nil || *e.Delta == 0 {
		return ""
	}
	s := utils.HealthDelta(*e.Delta)
	if *e.Delta > 0 {
		return gainStyle.Render(s)
	}
	return lossStyle.Render(s)
}

// Events renders the newest events with their timestamps in zone
func Events(state *models.GroupState, zone *time.Location, width int) string {
	lines := []string{headingStyle.Render("Activity")}
	events := state.Recent(constants.RecentEventsLimit)
	if len(events) == 0 {
		lines = append(lines, dimStyle.Render("Activity will appear here."))
		return strings.Join(lines, "\n")
	}
	line := lipgloss.NewStyle()
	if width > 0 {
		line = line.MaxWidth(width)
	}
	for _, e := range events {
		lines = append(lines,
			line.Render(Describe(e, state.Group.Mode)),
			dimStyle.Render("  "+duedate.DisplayString(e.CreatedAt, zone)),
		)
	}
	return strings.Join(lines, "\n")
}

// Leaderboard renders friend-group standings; empty when hidden
func Leaderboard(state *models.GroupState) string {
	if !state.ShowLeaderboard() {
		return ""
	}
	lines := []string{headingStyle.Render("Leaderboard")}
	for i, row := range state.Leaderboard {
		lines = append(lines, fmt.Sprintf("%d. %-20s %s",
			i+1,
			utils.Truncate(row.User.DisplayName, 20),
			dimStyle.Render(fmt.Sprintf("done %d • missed %d", row.DoneCount, row.MissedCount)),
		))
	}
	return strings.Join(lines, "\n")
}
