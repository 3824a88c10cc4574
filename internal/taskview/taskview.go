// Package taskview derives the dashboard's visible task list from the raw
// group state, the filter state, and the current instant.
//
// Build is a pure function: the same inputs always give the same rows and
// nothing is cached between calls.
package taskview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
)

// TitleLocale orders titles under SortTitle
var TitleLocale = language.English

// Row is one visible task with its derived flags
type Row struct {
	Task       models.Task
	Due        time.Time // zero when DueValid is false
	DueValid   bool
	Overdue    bool
	NeedsGrade bool
}

// DueLabel renders the due instant in zone, or the raw value if it did not parse
func (r Row) DueLabel(zone *time.Location) string {
	if !r.DueValid {
		return r.Task.DueAt
	}
	return duedate.Display(r.Due, zone)
}

type View struct {
	Rows  []Row
	Total int
}

// Summary renders "Showing N of M"
func (v View) Summary() string {
	return fmt.Sprintf("Showing %d of %d", len(v.Rows), v.Total)
}

// EmptyMessage explains an empty list
func (v View) EmptyMessage(canCreate bool) string {
	if len(v.Rows) > 0 {
		return ""
	}
	if v.Total == 0 {
		if canCreate {
			return "No tasks yet. Create the first one."
		}
		return "No tasks yet."
	}
	return "No tasks match your filters."
}

// Build filters and sorts tasks for display. Predicates run in a fixed order:
// search, type, status, then due bucket. Bucket boundaries are computed on
// comparable values in zone, so "today" means today in the reference zone.
func Build(tasks []models.Task, f Filter, now time.Time, zone *time.Location) View {
	f = f.Normalized()
	query := strings.ToLower(strings.TrimSpace(f.Search))

	nowC := duedate.Comparable(now, zone)
	bounds := bucketBounds{
		now:      nowC,
		dayStart: duedate.StartOfDay(nowC),
		dayEnd:   duedate.AddDays(duedate.StartOfDay(nowC), 1),
		weekEnd:  duedate.AddDays(nowC, 7),
		monthEnd: duedate.AddDays(nowC, 30),
	}

	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		row := derive(t, now)

		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if !f.TypeEnabled(t.Type) {
			continue
		}
		if !matchesStatus(t.MyStatus, f.Status) {
			continue
		}
		if f.Due != DueAll {
			if !row.DueValid || !bounds.contains(f.Due, duedate.Comparable(row.Due, zone)) {
				continue
			}
		}
		rows = append(rows, row)
	}

	sortRows(rows, f.Sort)
	return View{Rows: rows, Total: len(tasks)}
}

// Derive computes the flags for a single task without any filtering
func Derive(t models.Task, now time.Time) Row {
	return derive(t, now)
}

func derive(t models.Task, now time.Time) Row {
	row := Row{
		Task:       t,
		NeedsGrade: t.Type.Graded() && t.MyStatus != models.TaskStatusDone,
	}
	if due, err := duedate.ParseInstant(t.DueAt); err == nil {
		row.Due = due
		row.DueValid = true
		row.Overdue = due.Before(now) && !t.MyStatus.Closed()
	}
	return row
}

func matchesStatus(s models.TaskStatus, f StatusFilter) bool {
	switch f {
	case StatusDone:
		return s.Closed()
	case StatusNotDone:
		return !s.Closed()
	default:
		return true
	}
}

type bucketBounds struct {
	now, dayStart, dayEnd, weekEnd, monthEnd time.Time
}

func (b bucketBounds) contains(f DueFilter, due time.Time) bool {
	switch f {
	case DueOverdue:
		return due.Before(b.now)
	case DueToday:
		return !due.Before(b.dayStart) && due.Before(b.dayEnd)
	case DueNext7D:
		return !due.Before(b.now) && due.Before(b.weekEnd)
	case DueNext30D:
		return !due.Before(b.now) && due.Before(b.monthEnd)
	default:
		return true
	}
}

// sortRows orders rows in place. Every order is stable; under SortDueDate
// rows without a valid due date go last.
func sortRows(rows []Row, by SortBy) {
	switch by {
	case SortPenalty:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Task.Penalty > rows[j].Task.Penalty
		})
	case SortTitle:
		c := collate.New(TitleLocale)
		sort.SliceStable(rows, func(i, j int) bool {
			return c.CompareString(rows[i].Task.Title, rows[j].Task.Title) < 0
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.DueValid != b.DueValid {
				return a.DueValid
			}
			if !a.DueValid {
				return false
			}
			return a.Due.Before(b.Due)
		})
	}
}
