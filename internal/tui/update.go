package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
	pibbleerrors "github.com/julianstephens/pibble/internal/errors"
	"github.com/julianstephens/pibble/internal/logger"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
	"github.com/julianstephens/pibble/internal/taskview"
	"github.com/julianstephens/pibble/internal/tui/components/activity"
	"github.com/julianstephens/pibble/internal/tui/components/grouplist"
	"github.com/julianstephens/pibble/internal/tui/components/tasklist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m, nil

	case tickMsg:
		m.now = m.svc.Now()
		if m.state == constants.StateDashboard {
			m.rebuild()
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		if msg.gen != m.refreshGen || m.groupID == "" {
			return m, nil
		}
		return m, tea.Batch(
			m.cmds.loadState(m.groupID, service.LiveOrCached),
			scheduleRefresh(m.opts.RefreshInterval, m.refreshGen),
		)

	case groupsLoadedMsg:
		return m.handleGroupsLoaded(msg)

	case stateLoadedMsg:
		return m.handleStateLoaded(msg)

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case loggedOutMsg:
		if msg.err != nil {
			logger.Warn("Sign-out did not clear everything", "error", msg.err)
		}
		m.resetDashboard()
		m.groups = nil
		m.groupList.SetGroups(nil)
		return m, m.openAuthForm("")

	case groupSavedMsg:
		m.loading = false
		if msg.err != nil {
			if cmd, handled := m.handleUnauthorized(msg.err); handled {
				return m, cmd
			}
			m.lastError = pibbleerrors.Describe(msg.err)
			return m, nil
		}
		m.lastError = ""
		m.status = fmt.Sprintf("Welcome to %s · invite code %s", msg.group.Name, msg.group.InviteCode)
		return m, m.openGroup(*msg.group)

	case mutationDoneMsg:
		if msg.groupID != m.groupID {
			return m, nil
		}
		if msg.err != nil {
			if cmd, handled := m.handleUnauthorized(msg.err); handled {
				return m, cmd
			}
			m.lastError = pibbleerrors.Describe(msg.err)
		} else {
			m.lastError = ""
			m.status = msg.status
		}
		return m, m.cmds.loadState(m.groupID, service.Live)

	case constants.ConfirmationMsg:
		m.confirmationForm = &ConfirmationFormModel{Message: msg.Message}
		m.pendingAction = msg.Action
		return m, m.openForm(constants.StateConfirmation, NewConfirmationForm(m.confirmationForm))
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	switch m.state {
	case constants.StateGroups:
		return m.updateGroups(msg)
	case constants.StateDashboard:
		return m.updateDashboard(msg)
	case constants.StateLoading:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateGroups(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.groupList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.cmds.loadGroups(service.Live)
		case key.Matches(msg, m.keys.Logout):
			m.loading = true
			return m, m.cmds.logout()
		}

	case grouplist.OpenGroupMsg:
		m.status = ""
		return m, m.openGroup(msg.Group)

	case grouplist.CreateGroupMsg:
		m.groupForm = &GroupFormModel{
			Mode:          models.GroupModeFriend,
			InitialHealth: strconv.Itoa(constants.DefaultHealth),
		}
		return m, m.openForm(constants.StateCreateGroup, NewGroupForm(m.groupForm))

	case grouplist.JoinGroupMsg:
		m.joinForm = &JoinFormModel{}
		return m, m.openForm(constants.StateJoinGroup, NewJoinForm(m.joinForm))
	}

	var cmd tea.Cmd
	m.groupList, cmd = m.groupList.Update(msg)
	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.resetDashboard()
			m.state = constants.StateGroups
			return m, m.cmds.loadGroups(service.LiveOrCached)
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.cmds.loadState(m.groupID, service.Live)
		case key.Matches(msg, m.keys.Filters):
			m.filterForm = newFilterFormModel(m.filter)
			return m, m.openForm(constants.StateFilters, NewFilterForm(m.filterForm))
		case key.Matches(msg, m.keys.Sort):
			m.filter = m.filter.Normalized()
			m.filter.Sort = nextSort(m.filter.Sort)
			m.rebuild()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			sort := m.filter.Normalized().Sort
			m.filter = taskview.DefaultFilter()
			m.filter.Sort = sort
			m.rebuild()
			return m, nil
		case key.Matches(msg, m.keys.Logout):
			m.loading = true
			return m, m.cmds.logout()
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case tasklist.AddTaskMsg:
		if m.snapshot == nil || !m.snapshot.State.CanCreateTasks() {
			return m, nil
		}
		m.taskForm = &TaskFormModel{Type: models.TaskTypeAssignment, Penalty: "10"}
		m.editingRow = nil
		return m, m.openForm(constants.StateCreateTask, NewTaskForm(m.taskForm, m.zoneLabel()))

	case tasklist.EditTaskMsg:
		row := msg.Row
		m.editingRow = &row
		m.taskForm = &TaskFormModel{
			Title:   row.Task.Title,
			Type:    row.Task.Type,
			Penalty: strconv.Itoa(row.Task.Penalty),
		}
		if row.DueValid {
			m.taskForm.Due = duedate.WallClockOf(row.Due, m.svc.Zone()).String()
		}
		return m, m.openForm(constants.StateEditTask, NewTaskForm(m.taskForm, m.zoneLabel()))

	case tasklist.DeleteTaskMsg:
		groupID, taskID := m.groupID, msg.Task.ID
		return m, func() tea.Msg {
			return constants.ConfirmationMsg{
				Message: fmt.Sprintf("Delete %q for everyone in the group?", msg.Task.Title),
				Action:  func() tea.Cmd { return m.cmds.deleteTask(groupID, taskID) },
			}
		}

	case tasklist.ToggleDoneMsg:
		t := msg.Row.Task
		if t.MyStatus == models.TaskStatusDone {
			return m, m.cmds.completeTask(m.groupID, t.ID, models.CompleteTaskRequest{Status: models.TaskStatusNotDone})
		}
		if msg.Row.NeedsGrade {
			m.gradingTask = &t
			m.gradeForm = &GradeFormModel{By: gradeByPercent, Letter: "A"}
			return m, m.openForm(constants.StateGradeEntry, NewGradeForm(m.gradeForm, t.Title))
		}
		return m, m.cmds.completeTask(m.groupID, t.ID, models.CompleteTaskRequest{Status: models.TaskStatusDone})

	case tasklist.NudgeMsg:
		if m.snapshot == nil {
			return m, nil
		}
		members := m.nudgeRecipients()
		if len(members) == 0 {
			m.lastError = "No other members to nudge yet."
			return m, nil
		}
		m.nudgeForm = &NudgeFormModel{ToUserID: members[0].ID, TaskID: msg.Task.ID}
		return m, m.openForm(constants.StateNudge, NewNudgeForm(m.nudgeForm, members, m.snapshot.State.Tasks))
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// updateForm feeds the open huh form and acts on completion
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc && m.state != constants.StateLogin {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm(cmd)
	case huh.StateAborted:
		if m.state == constants.StateLogin {
			m.quitting = true
			return m, tea.Quit
		}
		m.closeForm()
		return m, cmd
	}
	return m, cmd
}

func (m Model) submitForm(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{cmd}
	state := m.state
	m.formError = ""

	switch state {
	case constants.StateLogin:
		fm := *m.authForm
		m.form = nil
		m.state = constants.StateLoading
		m.loading = true
		cmds = append(cmds, m.cmds.authenticate(fm))
		return m, tea.Batch(cmds...)

	case constants.StateCreateGroup:
		fm := m.groupForm
		health, _ := strconv.Atoi(strings.TrimSpace(fm.InitialHealth))
		req := models.CreateGroupRequest{
			ClassCode:     fm.ClassCode,
			Term:          fm.Term,
			Mode:          fm.Mode,
			GroupName:     fm.Name,
			InitialHealth: health,
		}
		if strings.TrimSpace(fm.School) != "" {
			school := fm.School
			req.School = &school
		}
		m.loading = true
		cmds = append(cmds, m.cmds.createGroup(req))

	case constants.StateJoinGroup:
		m.loading = true
		cmds = append(cmds, m.cmds.joinGroup(m.joinForm.InviteCode))

	case constants.StateCreateTask:
		fm := m.taskForm
		penalty, _ := strconv.Atoi(strings.TrimSpace(fm.Penalty))
		cmds = append(cmds, m.cmds.createTask(m.groupID, service.TaskInput{
			Title:   fm.Title,
			Type:    fm.Type,
			Due:     fm.Due,
			Penalty: penalty,
		}))

	case constants.StateEditTask:
		if m.editingRow != nil {
			edit, changed := taskEdit(*m.editingRow, *m.taskForm, m.svc)
			if changed {
				cmds = append(cmds, m.cmds.updateTask(m.groupID, m.editingRow.Task.ID, edit))
			} else {
				m.status = "Nothing changed"
			}
		}

	case constants.StateGradeEntry:
		if m.gradingTask != nil {
			cmds = append(cmds, m.cmds.completeTask(m.groupID, m.gradingTask.ID, m.gradeForm.Request()))
		}

	case constants.StateFilters:
		m.filter = m.filterForm.Filter()
		m.closeForm()
		m.rebuild()
		return m, tea.Batch(cmds...)

	case constants.StateNudge:
		fm := m.nudgeForm
		req := models.NudgeRequest{ToUserID: fm.ToUserID}
		if fm.TaskID != "" {
			id := fm.TaskID
			req.TaskID = &id
		}
		if msg := strings.TrimSpace(fm.Message); msg != "" {
			req.Message = &msg
		}
		cmds = append(cmds, m.cmds.nudge(m.groupID, req))

	case constants.StateConfirmation:
		if m.confirmationForm.Confirmed && m.pendingAction != nil {
			cmds = append(cmds, m.pendingAction())
		}
	}

	m.closeForm()
	return m, tea.Batch(cmds...)
}

func (m Model) handleGroupsLoaded(msg groupsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if cmd, handled := m.handleUnauthorized(msg.err); handled {
			return m, cmd
		}
		m.lastError = pibbleerrors.Describe(msg.err)
		return m, nil
	}
	m.lastError = ""
	m.groups = msg.groups.Groups
	m.groupsFetched = msg.groups.FetchedAt
	m.groupsOffline = msg.groups.Offline
	m.groupList.SetGroups(m.groups)
	return m, nil
}

func (m Model) handleStateLoaded(msg stateLoadedMsg) (tea.Model, tea.Cmd) {
	// The group was closed or another one opened while this was in flight.
	if msg.groupID != m.groupID {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if cmd, handled := m.handleUnauthorized(msg.err); handled {
			return m, cmd
		}
		m.lastError = pibbleerrors.Describe(msg.err)
		return m, nil
	}
	if !msg.snap.Offline {
		m.lastError = ""
	}
	m.snapshot = msg.snap
	m.groupName = msg.snap.State.Group.Name
	m.rebuild()
	return m, nil
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		fm := *m.authForm
		fm.Password = ""
		cmd := m.openAuthFormWith(&fm, pibbleerrors.Describe(msg.err))
		return m, cmd
	}
	m.status = fmt.Sprintf("Signed in as %s", msg.identity.DisplayName)
	m.state = constants.StateGroups
	m.loading = true
	return m, m.cmds.loadGroups(service.Live)
}

// handleUnauthorized sends the user back to sign in when the server
// rejected the session.
func (m *Model) handleUnauthorized(err error) (tea.Cmd, bool) {
	if !errors.Is(err, api.ErrUnauthorized) {
		return nil, false
	}
	m.resetDashboard()
	return m.openAuthForm("Your session has expired. Sign in again."), true
}

func (m *Model) openAuthForm(notice string) tea.Cmd {
	fm := &AuthFormModel{Mode: authLogin}
	if m.authForm != nil {
		fm.Email = m.authForm.Email
	}
	return m.openAuthFormWith(fm, notice)
}

func (m *Model) openAuthFormWith(fm *AuthFormModel, notice string) tea.Cmd {
	m.authForm = fm
	m.form = NewAuthForm(fm)
	m.state = constants.StateLogin
	m.previousState = constants.StateLogin
	m.formError = notice
	return m.form.Init()
}

func (m *Model) openForm(state constants.SessionState, form *huh.Form) tea.Cmd {
	if m.form == nil {
		m.previousState = m.state
	}
	m.state = state
	m.form = form
	m.formError = ""
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 4)
	}
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.state = m.previousState
	m.groupForm = nil
	m.joinForm = nil
	m.taskForm = nil
	m.gradeForm = nil
	m.filterForm = nil
	m.nudgeForm = nil
	m.confirmationForm = nil
	m.pendingAction = nil
	m.editingRow = nil
	m.gradingTask = nil
}

func (m *Model) openGroup(g models.GroupSummary) tea.Cmd {
	m.form = nil
	m.groupID = g.ID
	m.groupName = g.Name
	m.snapshot = nil
	m.filter = taskview.DefaultFilter()
	m.refreshGen++
	m.state = constants.StateDashboard
	m.loading = true
	return tea.Batch(
		m.cmds.loadState(g.ID, service.LiveOrCached),
		scheduleRefresh(m.opts.RefreshInterval, m.refreshGen),
	)
}

// resetDashboard closes the open group; pending refreshes and loads for it
// are dropped when they arrive.
func (m *Model) resetDashboard() {
	m.groupID = ""
	m.groupName = ""
	m.snapshot = nil
	m.refreshGen++
	m.loading = false
}

// rebuild derives the visible rows and side panes from the snapshot
func (m *Model) rebuild() {
	if m.snapshot == nil || m.snapshot.State == nil {
		return
	}
	state := m.snapshot.State
	zone := m.svc.Zone()
	m.view = taskview.Build(state.Tasks, m.filter, m.now, zone)
	m.taskList.SetView(m.view, state.CanCreateTasks(), m.now, zone)
	m.petModel.SetPet(state.Pet)

	side := activity.Events(state, zone, m.sidebar.Width)
	if board := activity.Leaderboard(state); board != "" {
		side = board + "\n\n" + side
	}
	m.sidebar.SetContent(side)
}

// nudgeRecipients lists known members other than the viewer
func (m Model) nudgeRecipients() []models.UserRef {
	self := ""
	if id := m.svc.Session().Identity(); id != nil {
		self = id.ID
	}
	var out []models.UserRef
	for _, u := range m.snapshot.State.Members() {
		if u.ID != self {
			out = append(out, u)
		}
	}
	return out
}

func (m Model) zoneLabel() string {
	return duedate.ZoneLabel(m.now, m.svc.Zone())
}

func nextSort(s taskview.SortBy) taskview.SortBy {
	for i, v := range taskview.SortOrders {
		if v == s {
			return taskview.SortOrders[(i+1)%len(taskview.SortOrders)]
		}
	}
	return taskview.SortDueDate
}

// taskEdit diffs the edit form against the task it was opened for
func taskEdit(row taskview.Row, fm TaskFormModel, svc *service.Service) (service.TaskEdit, bool) {
	var edit service.TaskEdit
	changed := false

	if title := strings.TrimSpace(fm.Title); title != row.Task.Title {
		edit.Title = &title
		changed = true
	}
	if fm.Type != row.Task.Type {
		t := fm.Type
		edit.Type = &t
		changed = true
	}
	if p, err := strconv.Atoi(strings.TrimSpace(fm.Penalty)); err == nil && p != row.Task.Penalty {
		edit.Penalty = &p
		changed = true
	}
	original := ""
	if row.DueValid {
		original = duedate.WallClockOf(row.Due, svc.Zone()).String()
	}
	if due := strings.TrimSpace(fm.Due); due != original {
		edit.Due = &due
		changed = true
	}
	return edit, changed
}
