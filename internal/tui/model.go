package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/models"
	"github.com/julianstephens/pibble/internal/service"
	"github.com/julianstephens/pibble/internal/taskview"
	"github.com/julianstephens/pibble/internal/tui/components/grouplist"
	"github.com/julianstephens/pibble/internal/tui/components/pet"
	"github.com/julianstephens/pibble/internal/tui/components/tasklist"
)

// Options tune the dashboard's timers
type Options struct {
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
}

type Model struct {
	svc  *service.Service
	cmds commands
	opts Options

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	loading       bool
	quitting      bool
	width         int
	height        int
	now           time.Time

	// groups screen
	groupList     grouplist.Model
	groups        []models.GroupSummary
	groupsFetched time.Time
	groupsOffline bool

	// dashboard
	groupID    string
	groupName  string
	snapshot   *service.Snapshot
	filter     taskview.Filter
	view       taskview.View
	taskList   tasklist.Model
	petModel   pet.Model
	sidebar    viewport.Model
	refreshGen int

	// forms
	form             *huh.Form
	authForm         *AuthFormModel
	groupForm        *GroupFormModel
	joinForm         *JoinFormModel
	taskForm         *TaskFormModel
	gradeForm        *GradeFormModel
	filterForm       *FilterFormModel
	nudgeForm        *NudgeFormModel
	confirmationForm *ConfirmationFormModel
	pendingAction    func() tea.Cmd
	editingRow       *taskview.Row
	gradingTask      *models.Task

	status    string
	formError string
	lastError string
}

func NewModel(svc *service.Service, opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = constants.DefaultRefreshInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * constants.DefaultHTTPTimeout
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		svc:       svc,
		cmds:      commands{svc: svc, timeout: opts.RequestTimeout},
		opts:      opts,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		now:       svc.Now(),
		groupList: grouplist.New(nil, 0, 0),
		filter:    taskview.DefaultFilter(),
		taskList:  tasklist.New(0, 0),
		petModel:  pet.New(40),
		sidebar:   viewport.New(0, 0),
	}

	if svc.Session().Validate() {
		m.state = constants.StateGroups
		m.loading = true
	} else {
		m.openAuthForm("")
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), m.spinner.Tick}
	switch m.state {
	case constants.StateGroups:
		cmds = append(cmds, m.cmds.loadGroups(service.LiveOrCached))
	case constants.StateLogin:
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateGroups:
		return []key.Binding{m.keys.Refresh, m.keys.Logout, m.keys.Quit, m.keys.Help}
	case constants.StateDashboard:
		return []key.Binding{m.keys.Back, m.keys.Filters, m.keys.Sort, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	}
	return []key.Binding{m.keys.Quit}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.Refresh, m.keys.Logout}
	switch m.state {
	case constants.StateDashboard:
		tk := tasklist.DefaultKeyMap()
		return [][]key.Binding{
			global,
			{m.keys.Back, m.keys.Up, m.keys.Down, m.keys.Filters, m.keys.Sort, m.keys.Clear},
			{tk.Toggle, tk.Add, tk.Edit, tk.Delete, tk.Nudge},
		}
	case constants.StateGroups:
		gk := grouplist.DefaultKeyMap()
		return [][]key.Binding{global, {m.keys.Up, m.keys.Down, gk.Open, gk.Create, gk.Join}}
	}
	return [][]key.Binding{global}
}

// layout sizes the components for the current window
func (m *Model) layout() {
	m.help.Width = m.width
	bodyHeight := m.height - 6
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	m.groupList.SetSize(m.width-4, bodyHeight)

	sideWidth := m.width / 3
	if sideWidth < 30 {
		sideWidth = 30
	}
	mainWidth := m.width - sideWidth - 6
	if mainWidth < 30 {
		mainWidth = 30
	}
	m.petModel.SetWidth(mainWidth)
	m.taskList.SetSize(mainWidth, bodyHeight-5)
	m.sidebar.Width = sideWidth
	m.sidebar.Height = bodyHeight
}
