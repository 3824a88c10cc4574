package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pibble/internal/auth"
	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
)

type tickMsg time.Time

// refreshMsg carries the generation it was scheduled for; older generations
// belong to a group that has since been closed.
type refreshMsg struct {
	gen int
}

type groupsLoadedMsg struct {
	groups *service.Groups
	err    error
}

type stateLoadedMsg struct {
	groupID string
	snap    *service.Snapshot
	err     error
}

type authDoneMsg struct {
	identity *auth.Identity
	err      error
}

type groupSavedMsg struct {
	group *models.GroupSummary
	err   error
}

// mutationDoneMsg reports a task or nudge write against groupID
type mutationDoneMsg struct {
	groupID string
	status  string
	err     error
}

type loggedOutMsg struct {
	err error
}

func tick() tea.Cmd {
	return tea.Tick(constants.ClockTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func scheduleRefresh(every time.Duration, gen int) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return refreshMsg{gen: gen}
	})
}

// commands bundles the service calls the dashboard makes; each runs on its
// own goroutine and reports back with a message.
type commands struct {
	svc     *service.Service
	timeout time.Duration
}

func (c commands) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

func (c commands) loadGroups(mode service.ReadMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		groups, err := c.svc.MyGroups(ctx, mode)
		return groupsLoadedMsg{groups: groups, err: err}
	}
}

func (c commands) loadState(groupID string, mode service.ReadMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		snap, err := c.svc.GroupState(ctx, groupID, mode)
		return stateLoadedMsg{groupID: groupID, snap: snap, err: err}
	}
}

func (c commands) authenticate(fm AuthFormModel) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()

		var (
			id  *auth.Identity
			err error
		)
		switch fm.Mode {
		case authRegister:
			id, err = c.svc.Register(ctx, models.RegisterRequest{
				Email:       fm.Email,
				DisplayName: fm.DisplayName,
				Password:    fm.Password,
			})
		case authDemo:
			id, err = c.svc.LoginDemo(fm.Email, fm.DisplayName)
		default:
			id, err = c.svc.Login(ctx, models.LoginRequest{Email: fm.Email, Password: fm.Password})
		}
		return authDoneMsg{identity: id, err: err}
	}
}

func (c commands) logout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		return loggedOutMsg{err: c.svc.Logout(ctx)}
	}
}

func (c commands) createGroup(req models.CreateGroupRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		group, err := c.svc.CreateGroup(ctx, req)
		return groupSavedMsg{group: group, err: err}
	}
}

func (c commands) joinGroup(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		group, err := c.svc.JoinGroup(ctx, models.JoinGroupRequest{InviteCode: code})
		return groupSavedMsg{group: group, err: err}
	}
}

func (c commands) createTask(groupID string, in service.TaskInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		_, err := c.svc.CreateTask(ctx, groupID, in)
		return mutationDoneMsg{groupID: groupID, status: "Task created", err: err}
	}
}

func (c commands) updateTask(groupID, taskID string, edit service.TaskEdit) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		_, err := c.svc.UpdateTask(ctx, groupID, taskID, edit)
		return mutationDoneMsg{groupID: groupID, status: "Task updated", err: err}
	}
}

func (c commands) deleteTask(groupID, taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		err := c.svc.DeleteTask(ctx, groupID, taskID)
		return mutationDoneMsg{groupID: groupID, status: "Task deleted", err: err}
	}
}

func (c commands) completeTask(groupID, taskID string, req models.CompleteTaskRequest) tea.Cmd {
	status := "Marked done"
	if req.Status == models.TaskStatusNotDone {
		status = "Marked not done"
	}
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		err := c.svc.CompleteTask(ctx, groupID, taskID, req)
		return mutationDoneMsg{groupID: groupID, status: status, err: err}
	}
}

func (c commands) nudge(groupID string, req models.NudgeRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		err := c.svc.Nudge(ctx, groupID, req)
		return mutationDoneMsg{groupID: groupID, status: "Nudge sent", err: err}
	}
}
