package models

import "math"

type PetState struct {
	Name      string  `json:"name"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type Mood string

const (
	MoodHealthy  Mood = "Healthy"
	MoodUnwell   Mood = "Unwell"
	MoodCritical Mood = "Critical"
	MoodDeceased Mood = "Deceased"
)

// HealthPercent is health as a share of max health, clamped to 0..100
func (p PetState) HealthPercent() float64 {
	if p.MaxHealth <= 0 {
		return 0
	}
	pct := float64(p.Health) / float64(p.MaxHealth) * 100
	return math.Max(0, math.Min(100, pct))
}

func (p PetState) Mood() Mood {
	if p.Health <= 0 {
		return MoodDeceased
	}
	pct := p.HealthPercent()
	switch {
	case pct >= 70:
		return MoodHealthy
	case pct >= 30:
		return MoodUnwell
	default:
		return MoodCritical
	}
}

// Stage picks one of five pet portraits, 1 being the healthiest
func (p PetState) Stage() int {
	pct := p.HealthPercent()
	switch {
	case pct >= 80:
		return 1
	case pct >= 60:
		return 2
	case pct >= 40:
		return 3
	case pct >= 20:
		return 4
	default:
		return 5
	}
}
