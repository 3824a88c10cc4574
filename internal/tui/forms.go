package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/taskview"
)

type authMode string

const (
	authLogin    authMode = "login"
	authRegister authMode = "register"
	authDemo     authMode = "demo"
)

type AuthFormModel struct {
	Mode        authMode
	Email       string
	DisplayName string
	Password    string
}

type GroupFormModel struct {
	Name          string
	ClassCode     string
	Term          string
	School        string
	Mode          models.GroupMode
	InitialHealth string
}

type JoinFormModel struct {
	InviteCode string
}

type TaskFormModel struct {
	Title   string
	Type    models.TaskType
	Due     string
	Penalty string
}

type gradeBy string

const (
	gradeByPercent gradeBy = "percent"
	gradeByLetter  gradeBy = "letter"
	gradeSkip      gradeBy = "skip"
)

type GradeFormModel struct {
	By      gradeBy
	Percent string
	Letter  string
}

type FilterFormModel struct {
	Search string
	Due    taskview.DueFilter
	Status taskview.StatusFilter
	Types  []models.TaskType
	Sort   taskview.SortBy
}

type NudgeFormModel struct {
	ToUserID string
	TaskID   string
	Message  string
}

type ConfirmationFormModel struct {
	Message   string
	Confirmed bool
}

func notBlank(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func intInRange(what string, lo, hi int) func(string) error {
	return func(s string) error {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a whole number", what)
		}
		if i < lo || (hi > 0 && i > hi) {
			if hi > 0 {
				return fmt.Errorf("%s must be between %d and %d", what, lo, hi)
			}
			return fmt.Errorf("%s must be at least %d", what, lo)
		}
		return nil
	}
}

func validWallClock(s string) error {
	_, err := duedate.ParseWallClock(s)
	return err
}

// NewAuthForm asks how to sign in, then only for the fields that mode needs
func NewAuthForm(fm *AuthFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[authMode]().
				Title("Welcome to "+constants.DisplayName).
				Options(
					huh.NewOption("Sign in", authLogin),
					huh.NewOption("Create an account", authRegister),
					huh.NewOption("Try a demo identity", authDemo),
				).
				Value(&fm.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Display name").
				Description("Shown to your group").
				Value(&fm.DisplayName).
				Validate(func(s string) error {
					if fm.Mode == authRegister {
						return notBlank("display name")(s)
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Mode == authLogin }),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(func(s string) error {
					if fm.Mode == authRegister {
						return models.ValidatePassword(s)
					}
					return notBlank("password")(s)
				}),
		).WithHideFunc(func() bool { return fm.Mode == authDemo }),
	).WithTheme(huh.ThemeDracula())
}

func NewGroupForm(fm *GroupFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Group name").
				Value(&fm.Name).
				Validate(notBlank("group name")),
			huh.NewInput().
				Title("Class code").
				Placeholder("CS 101").
				Value(&fm.ClassCode).
				Validate(notBlank("class code")),
			huh.NewInput().
				Title("Term").
				Placeholder("Spring 2025").
				Value(&fm.Term).
				Validate(notBlank("term")),
			huh.NewInput().
				Title("School").
				Description("Optional").
				Value(&fm.School),
			huh.NewSelect[models.GroupMode]().
				Title("Mode").
				Options(
					huh.NewOption("Friend group: everyone adds tasks", models.GroupModeFriend),
					huh.NewOption("Instructor group: instructors add tasks", models.GroupModeInstructor),
				).
				Value(&fm.Mode),
			huh.NewInput().
				Title("Pet starting health").
				Value(&fm.InitialHealth).
				Validate(intInRange("initial health", constants.MinInitialHealth, constants.MaxInitialHealth)),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewJoinForm(fm *JoinFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Invite code").
				Value(&fm.InviteCode).
				Validate(notBlank("invite code")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewTaskForm is used for both create and edit; due is a reference-zone wall clock
func NewTaskForm(fm *TaskFormModel, zoneLabel string) *huh.Form {
	typeOptions := make([]huh.Option[models.TaskType], len(models.TaskTypes))
	for i, t := range models.TaskTypes {
		typeOptions[i] = huh.NewOption(string(t), t)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(notBlank("task title")),
			huh.NewSelect[models.TaskType]().
				Title("Type").
				Options(typeOptions...).
				Value(&fm.Type),
			huh.NewInput().
				Title("Due (YYYY-MM-DD HH:MM)").
				Description("Entered in "+zoneLabel).
				Value(&fm.Due).
				Validate(validWallClock),
			huh.NewInput().
				Title("Penalty (HP lost if missed)").
				Value(&fm.Penalty).
				Validate(intInRange("penalty", constants.MinPenalty, 0)),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewGradeForm(fm *GradeFormModel, taskTitle string) *huh.Form {
	letterOptions := make([]huh.Option[string], len(models.GradeLetters))
	for i, l := range models.GradeLetters {
		letterOptions[i] = huh.NewOption(l, l)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[gradeBy]().
				Title("Record a grade for "+taskTitle+"?").
				Options(
					huh.NewOption("Percent", gradeByPercent),
					huh.NewOption("Letter", gradeByLetter),
					huh.NewOption("No grade", gradeSkip),
				).
				Value(&fm.By),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Percent (0-100)").
				Value(&fm.Percent).
				Validate(intInRange("grade percent", 0, 100)),
		).WithHideFunc(func() bool { return fm.By != gradeByPercent }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Letter").
				Options(letterOptions...).
				Value(&fm.Letter),
		).WithHideFunc(func() bool { return fm.By != gradeByLetter }),
	).WithTheme(huh.ThemeDracula())
}

func NewFilterForm(fm *FilterFormModel) *huh.Form {
	dueOptions := make([]huh.Option[taskview.DueFilter], len(taskview.DueFilters))
	for i, d := range taskview.DueFilters {
		dueOptions[i] = huh.NewOption(d.Label(), d)
	}
	statusOptions := make([]huh.Option[taskview.StatusFilter], len(taskview.StatusFilters))
	for i, s := range taskview.StatusFilters {
		statusOptions[i] = huh.NewOption(s.Label(), s)
	}
	sortOptions := make([]huh.Option[taskview.SortBy], len(taskview.SortOrders))
	for i, s := range taskview.SortOrders {
		sortOptions[i] = huh.NewOption(s.Label(), s)
	}
	selected := make(map[models.TaskType]bool, len(fm.Types))
	for _, t := range fm.Types {
		selected[t] = true
	}
	typeOptions := make([]huh.Option[models.TaskType], len(models.TaskTypes))
	for i, t := range models.TaskTypes {
		typeOptions[i] = huh.NewOption(string(t), t).Selected(selected[t])
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search titles").
				Value(&fm.Search),
			huh.NewSelect[taskview.DueFilter]().
				Title("Due").
				Options(dueOptions...).
				Value(&fm.Due),
			huh.NewSelect[taskview.StatusFilter]().
				Title("Status").
				Options(statusOptions...).
				Value(&fm.Status),
			huh.NewMultiSelect[models.TaskType]().
				Title("Types").
				Options(typeOptions...).
				Value(&fm.Types),
			huh.NewSelect[taskview.SortBy]().
				Title("Sort by").
				Options(sortOptions...).
				Value(&fm.Sort),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewNudgeForm(fm *NudgeFormModel, members []models.UserRef, tasks []models.Task) *huh.Form {
	memberOptions := make([]huh.Option[string], len(members))
	for i, u := range members {
		memberOptions[i] = huh.NewOption(u.DisplayName, u.ID)
	}
	taskOptions := []huh.Option[string]{huh.NewOption("(no task)", "")}
	for _, t := range tasks {
		taskOptions = append(taskOptions, huh.NewOption(t.Title, t.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Nudge who?").
				Options(memberOptions...).
				Value(&fm.ToUserID),
			huh.NewSelect[string]().
				Title("About").
				Options(taskOptions...).
				Value(&fm.TaskID),
			huh.NewInput().
				Title("Message").
				Description("Optional").
				Value(&fm.Message),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewConfirmationForm(fm *ConfirmationFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fm.Message).
				Affirmative("Yes").
				Negative("No").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}

// Filter converts the form back into view filter state
func (fm FilterFormModel) Filter() taskview.Filter {
	f := taskview.DefaultFilter()
	f.Search = fm.Search
	f.Due = fm.Due
	f.Status = fm.Status
	f.Sort = fm.Sort
	for _, t := range models.TaskTypes {
		f.Types[t] = false
	}
	for _, t := range fm.Types {
		f.Types[t] = true
	}
	return f.Normalized()
}

func newFilterFormModel(f taskview.Filter) *FilterFormModel {
	f = f.Normalized()
	fm := &FilterFormModel{Search: f.Search, Due: f.Due, Status: f.Status, Sort: f.Sort}
	for _, t := range models.TaskTypes {
		if f.TypeEnabled(t) {
			fm.Types = append(fm.Types, t)
		}
	}
	return fm
}

// Request converts the grade form into a DONE status update
func (fm GradeFormModel) Request() models.CompleteTaskRequest {
	req := models.CompleteTaskRequest{Status: models.TaskStatusDone}
	switch fm.By {
	case gradeByPercent:
		if p, err := strconv.Atoi(strings.TrimSpace(fm.Percent)); err == nil {
			req.GradePercent = &p
		}
	case gradeByLetter:
		if fm.Letter != "" {
			l := fm.Letter
			req.GradeLetter = &l
		}
	}
	return req
}
