package models

import (
	"fmt"
	"strings"
)

// GradeLetters lists the accepted letter grades, best first
var GradeLetters = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "F"}

var letterCutoffs = []struct {
	min    int
	letter string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{76, "B+"},
	{72, "B"},
	{68, "B-"},
	{64, "C+"},
	{60, "C"},
	{55, "C-"},
	{50, "D"},
}

// PercentToLetter converts a 0..100 grade to its letter
func PercentToLetter(percent int) (string, error) {
	if percent < 0 || percent > 100 {
		return "", fmt.Errorf("percent must be between 0 and 100")
	}
	for _, c := range letterCutoffs {
		if percent >= c.min {
			return c.letter, nil
		}
	}
	return "F", nil
}

// NormalizeLetter trims and upper-cases a letter grade and checks it is known
func NormalizeLetter(letter string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(letter))
	for _, valid := range GradeLetters {
		if normalized == valid {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid grade letter %q (must be one of %s)", letter, strings.Join(GradeLetters, ", "))
}

// GradeHealthDelta previews the pet health change the backend applies for a grade.
// A+ heals one point; B-range grades cost one point on assignments only.
func GradeHealthDelta(letter string, taskType TaskType) int {
	switch letter {
	case "A+":
		return 1
	case "A", "A-", "B+":
		return 0
	case "B", "B-":
		if taskType == TaskTypeExam {
			return 0
		}
		return -1
	case "C+":
		return -2
	case "C":
		return -3
	case "C-", "D":
		return -4
	default:
		return -5
	}
}
