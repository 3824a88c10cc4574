package tui

import (
	"testing"
	"time"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/auth"
	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
	"github.com/julianstephens/pibble/internal/taskview"
)

func TestGradeFormRequest(t *testing.T) {
	tests := []struct {
		name        string
		form        GradeFormModel
		wantPercent *int
		wantLetter  string
	}{
		{"percent", GradeFormModel{By: gradeByPercent, Percent: " 87 ", Letter: "A"}, ptrInt(87), ""},
		{"letter", GradeFormModel{By: gradeByLetter, Percent: "87", Letter: "B+"}, nil, "B+"},
		{"skip", GradeFormModel{By: gradeSkip, Percent: "87", Letter: "A"}, nil, ""},
		{"unparsable percent", GradeFormModel{By: gradeByPercent, Percent: "lots"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.form.Request()
			if req.Status != models.TaskStatusDone {
				t.Errorf("Status = %s, want DONE", req.Status)
			}
			switch {
			case tt.wantPercent == nil && req.GradePercent != nil:
				t.Errorf("GradePercent = %d, want none", *req.GradePercent)
			case tt.wantPercent != nil && (req.GradePercent == nil || *req.GradePercent != *tt.wantPercent):
				t.Errorf("GradePercent = %v, want %d", req.GradePercent, *tt.wantPercent)
			}
			got := ""
			if req.GradeLetter != nil {
				got = *req.GradeLetter
			}
			if got != tt.wantLetter {
				t.Errorf("GradeLetter = %q, want %q", got, tt.wantLetter)
			}
		})
	}
}

func TestFilterFormRoundTrip(t *testing.T) {
	f := taskview.DefaultFilter()
	f.Search = "essay"
	f.Due = taskview.DueNext7D
	f.Status = taskview.StatusNotDone
	f.Sort = taskview.SortTitle
	f.Types[models.TaskTypeLecture] = false

	fm := newFilterFormModel(f)
	if len(fm.Types) != len(models.TaskTypes)-1 {
		t.Fatalf("Types = %v, want every type but LECTURE", fm.Types)
	}

	got := fm.Filter()
	if got.Search != "essay" || got.Due != taskview.DueNext7D || got.Status != taskview.StatusNotDone || got.Sort != taskview.SortTitle {
		t.Errorf("Filter() = %+v", got)
	}
	if got.TypeEnabled(models.TaskTypeLecture) {
		t.Error("LECTURE should stay disabled")
	}
	if !got.TypeEnabled(models.TaskTypeExam) {
		t.Error("EXAM should stay enabled")
	}
}

func TestFilterFormUnknownValuesFallBack(t *testing.T) {
	fm := FilterFormModel{Due: "SOMEDAY", Status: "MAYBE", Sort: "RANDOM", Types: models.TaskTypes}
	got := fm.Filter()
	if got.Due != taskview.DueAll || got.Status != taskview.StatusAll || got.Sort != taskview.SortDueDate {
		t.Errorf("Filter() = %+v, want defaults", got)
	}
	if got.Active() {
		t.Error("defaults should not count as an active filter")
	}
}

func TestTaskEdit(t *testing.T) {
	zone, err := duedate.LoadZone("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	session := auth.NewSession()
	svc := service.New(api.New("http://127.0.0.1:0", session), session, cache.NewMemory(), service.WithZone(zone))

	task := models.Task{ID: "t1", Title: "Essay", Type: models.TaskTypeAssignment, DueAt: "2025-03-02T08:00:00.000Z", Penalty: 10}
	row := taskview.Derive(task, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	unchanged := TaskFormModel{Title: "Essay", Type: models.TaskTypeAssignment, Due: "2025-03-02 00:00", Penalty: "10"}

	tests := []struct {
		name        string
		form        func(TaskFormModel) TaskFormModel
		wantChanged bool
		check       func(t *testing.T, e service.TaskEdit)
	}{
		{
			name:        "nothing changed",
			form:        func(f TaskFormModel) TaskFormModel { return f },
			wantChanged: false,
		},
		{
			name:        "whitespace around title is ignored",
			form:        func(f TaskFormModel) TaskFormModel { f.Title = "  Essay "; return f },
			wantChanged: false,
		},
		{
			name:        "new penalty only",
			form:        func(f TaskFormModel) TaskFormModel { f.Penalty = "25"; return f },
			wantChanged: true,
			check: func(t *testing.T, e service.TaskEdit) {
				if e.Penalty == nil || *e.Penalty != 25 {
					t.Errorf("Penalty = %v, want 25", e.Penalty)
				}
				if e.Title != nil || e.Type != nil || e.Due != nil {
					t.Errorf("unexpected fields in %+v", e)
				}
			},
		},
		{
			name: "new due and type",
			form: func(f TaskFormModel) TaskFormModel {
				f.Due = "2025-03-05 09:30"
				f.Type = models.TaskTypeExam
				return f
			},
			wantChanged: true,
			check: func(t *testing.T, e service.TaskEdit) {
				if e.Due == nil || *e.Due != "2025-03-05 09:30" {
					t.Errorf("Due = %v", e.Due)
				}
				if e.Type == nil || *e.Type != models.TaskTypeExam {
					t.Errorf("Type = %v", e.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, changed := taskEdit(row, tt.form(unchanged), svc)
			if changed != tt.wantChanged {
				t.Fatalf("changed = %v, want %v (%+v)", changed, tt.wantChanged, edit)
			}
			if tt.check != nil {
				tt.check(t, edit)
			}
		})
	}
}

func ptrInt(v int) *int { return &v }
