package models

import (
	"fmt"
	"strings"
)

type TaskType string

const (
	TaskTypeAssignment TaskType = "ASSIGNMENT"
	TaskTypeQuiz       TaskType = "QUIZ"
	TaskTypeLecture    TaskType = "LECTURE"
	TaskTypeExam       TaskType = "EXAM"
	TaskTypeOther      TaskType = "OTHER"
)

// TaskTypes lists every task type in display order
var TaskTypes = []TaskType{
	TaskTypeAssignment,
	TaskTypeQuiz,
	TaskTypeLecture,
	TaskTypeExam,
	TaskTypeOther,
}

// Valid reports whether t is one of the known task types
func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTaskType accepts a task type in any letter case
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown task type %q", s)
	}
	return t, nil
}

// Graded reports whether completing a task of this type asks for a grade
func (t TaskType) Graded() bool {
	return t == TaskTypeExam || t == TaskTypeAssignment
}

type TaskStatus string

const (
	TaskStatusNotDone TaskStatus = "NOT_DONE"
	TaskStatusDone    TaskStatus = "DONE"
	TaskStatusExcused TaskStatus = "EXCUSED"
)

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotDone, TaskStatusDone, TaskStatusExcused:
		return true
	}
	return false
}

// Closed reports whether the task no longer counts against the viewer
func (s TaskStatus) Closed() bool {
	return s == TaskStatusDone || s == TaskStatusExcused
}

type TaskStats struct {
	DoneCount  int `json:"doneCount"`
	TotalCount int `json:"totalCount"`
}

// Task is a task as seen by the signed-in viewer
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Type           TaskType   `json:"type"`
	DueAt          string     `json:"dueAt"` // ISO-8601 instant, parsed lazily
	Penalty        int        `json:"penalty"`
	MyStatus       TaskStatus `json:"myStatus"`
	MyGradeLetter  *string    `json:"myGradeLetter,omitempty"`
	MyGradePercent *int       `json:"myGradePercent,omitempty"`
	Stats          TaskStats  `json:"stats"`
}

// GradeLabel renders the viewer's grade, if any
func (t Task) GradeLabel() string {
	switch {
	case t.MyGradeLetter != nil && t.MyGradePercent != nil:
		return fmt.Sprintf("%s (%d%%)", *t.MyGradeLetter, *t.MyGradePercent)
	case t.MyGradeLetter != nil:
		return *t.MyGradeLetter
	case t.MyGradePercent != nil:
		return fmt.Sprintf("%d%%", *t.MyGradePercent)
	}
	return ""
}

type CreateTaskRequest struct {
	Title   string   `json:"title"`
	Type    TaskType `json:"type"`
	DueAt   string   `json:"dueAt"`
	Penalty int      `json:"penalty"`
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown task type %q", r.Type)
	}
	if r.DueAt == "" {
		return fmt.Errorf("due date is required")
	}
	if r.Penalty < 1 {
		return fmt.Errorf("penalty must be at least 1")
	}
	return nil
}

// UpdateTaskRequest carries only the fields being changed
type UpdateTaskRequest struct {
	Title   *string   `json:"title,omitempty"`
	Type    *TaskType `json:"type,omitempty"`
	DueAt   *string   `json:"dueAt,omitempty"`
	Penalty *int      `json:"penalty,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	if r.Title == nil && r.Type == nil && r.DueAt == nil && r.Penalty == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if r.Type != nil && !r.Type.Valid() {
		return fmt.Errorf("unknown task type %q", *r.Type)
	}
	if r.Penalty != nil && *r.Penalty < 1 {
		return fmt.Errorf("penalty must be at least 1")
	}
	return nil
}

type CompleteTaskRequest struct {
	Status       TaskStatus `json:"status"`
	GradePercent *int       `json:"gradePercent,omitempty"`
	GradeLetter  *string    `json:"gradeLetter,omitempty"`
}

func (r *CompleteTaskRequest) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	if r.GradePercent != nil && (*r.GradePercent < 0 || *r.GradePercent > 100) {
		return fmt.Errorf("grade percent must be between 0 and 100")
	}
	if r.GradeLetter != nil {
		letter, err := NormalizeLetter(*r.GradeLetter)
		if err != nil {
			return err
		}
		r.GradeLetter = &letter
	}
	if r.Status != TaskStatusDone && (r.GradePercent != nil || r.GradeLetter != nil) {
		return fmt.Errorf("a grade can only be recorded when marking a task done")
	}
	return nil
}

// TaskOut is what the backend returns for task create and update
type TaskOut struct {
	ID      string   `json:"id"`
	GroupID string   `json:"groupId"`
	Title   string   `json:"title"`
	Type    TaskType `json:"type"`
	DueAt   string   `json:"dueAt"`
	Penalty int      `json:"penalty"`
}
