package taskview

import (
	"strings"

	"github.com/julianstephens/pibble/internal/models"
)

type DueFilter string

const (
	DueAll     DueFilter = "ALL"
	DueOverdue DueFilter = "OVERDUE"
	DueToday   DueFilter = "TODAY"
	DueNext7D  DueFilter = "NEXT_7D"
	DueNext30D DueFilter = "NEXT_30D"
)

// DueFilters lists the due buckets in menu order
var DueFilters = []DueFilter{DueAll, DueOverdue, DueToday, DueNext7D, DueNext30D}

func (d DueFilter) Label() string {
	switch d {
	case DueOverdue:
		return "Overdue"
	case DueToday:
		return "Due today"
	case DueNext7D:
		return "Next 7 days"
	case DueNext30D:
		return "Next 30 days"
	default:
		return "All"
	}
}

type StatusFilter string

const (
	StatusAll     StatusFilter = "ALL"
	StatusDone    StatusFilter = "DONE"
	StatusNotDone StatusFilter = "NOT_DONE"
)

var StatusFilters = []StatusFilter{StatusAll, StatusDone, StatusNotDone}

func (s StatusFilter) Label() string {
	switch s {
	case StatusDone:
		return "Done"
	case StatusNotDone:
		return "Not done"
	default:
		return "All"
	}
}

type SortBy string

const (
	SortDueDate SortBy = "DUE_DATE"
	SortPenalty SortBy = "PENALTY"
	SortTitle   SortBy = "TITLE"
)

var SortOrders = []SortBy{SortDueDate, SortPenalty, SortTitle}

func (s SortBy) Label() string {
	switch s {
	case SortPenalty:
		return "Penalty (high to low)"
	case SortTitle:
		return "Title (A to Z)"
	default:
		return "Due date (soonest)"
	}
}

// Filter is the dashboard's filter and sort state
type Filter struct {
	Search string
	Due    DueFilter
	Status StatusFilter
	Types  map[models.TaskType]bool
	Sort   SortBy
}

// DefaultFilter shows every task sorted by due date
func DefaultFilter() Filter {
	types := make(map[models.TaskType]bool, len(models.TaskTypes))
	for _, t := range models.TaskTypes {
		types[t] = true
	}
	return Filter{
		Due:    DueAll,
		Status: StatusAll,
		Types:  types,
		Sort:   SortDueDate,
	}
}

// Normalized replaces unknown enum values with their defaults.
// A type missing from Types counts as enabled.
func (f Filter) Normalized() Filter {
	out := DefaultFilter()
	out.Search = f.Search
	if containsValue(DueFilters, f.Due) {
		out.Due = f.Due
	}
	if containsValue(StatusFilters, f.Status) {
		out.Status = f.Status
	}
	if containsValue(SortOrders, f.Sort) {
		out.Sort = f.Sort
	}
	for t, enabled := range f.Types {
		if _, known := out.Types[t]; known {
			out.Types[t] = enabled
		}
	}
	return out
}

// Active reports whether any filter differs from the defaults. Sort is ignored.
func (f Filter) Active() bool {
	n := f.Normalized()
	if strings.TrimSpace(n.Search) != "" || n.Due != DueAll || n.Status != StatusAll {
		return true
	}
	for _, enabled := range n.Types {
		if !enabled {
			return true
		}
	}
	return false
}

// TypeEnabled reports whether tasks of type t pass the type filter
func (f Filter) TypeEnabled(t models.TaskType) bool {
	enabled, ok := f.Types[t]
	return !ok || enabled
}

// ToggleType flips a task type and returns the updated filter
func (f Filter) ToggleType(t models.TaskType) Filter {
	n := f.Normalized()
	n.Types[t] = !n.TypeEnabled(t)
	return n
}

// ParseDueFilter accepts enum names in any case, with "-" or "_"
func ParseDueFilter(s string) DueFilter {
	v := DueFilter(normalizeEnum(s))
	if containsValue(DueFilters, v) {
		return v
	}
	return DueAll
}

func ParseStatusFilter(s string) StatusFilter {
	v := StatusFilter(normalizeEnum(s))
	if containsValue(StatusFilters, v) {
		return v
	}
	return StatusAll
}

func ParseSortBy(s string) SortBy {
	v := SortBy(normalizeEnum(s))
	if containsValue(SortOrders, v) {
		return v
	}
	return SortDueDate
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}

func containsValue[T comparable](values []T, v T) bool {
	for _, known := range values {
		if known == v {
			return true
		}
	}
	return false
}
