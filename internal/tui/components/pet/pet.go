// Package pet renders the group pet's health bar and mood.
package pet

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pibble/internal/models"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	hpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	moodStyles = map[models.Mood]lipgloss.Style{
		models.MoodHealthy:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.MoodUnwell:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.MoodCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.MoodDeceased: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
	}
)

// faces are indexed by Stage-1
var faces = []string{"(=^･ω･^=)", "(=･ω･=)", "(=･ x ･=)", "(=；ω；=)", "(=x _ x=)"}

type Model struct {
	pet   models.PetState
	bar   progress.Model
	width int
	set   bool
}

func New(width int) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	m := Model{bar: bar}
	m.SetWidth(width)
	return m
}

func (m *Model) SetPet(p models.PetState) {
	m.pet = p
	m.set = true
}

func (m *Model) SetWidth(width int) {
	m.width = width
	w := width - 4
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	m.bar.Width = w
}

func (m Model) View() string {
	if !m.set {
		return ""
	}
	mood := m.pet.Mood()
	face := faces[m.pet.Stage()-1]
	if mood == models.MoodDeceased {
		face = faces[len(faces)-1]
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Render(m.pet.Name), " ", face, "  ",
		moodStyles[mood].Render(string(mood)),
	)
	hp := hpStyle.Render(fmt.Sprintf("%d / %d HP", m.pet.Health, m.pet.MaxHealth))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.bar.ViewAs(m.pet.HealthPercent()/100),
		hp,
	)
}
