package constants

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SessionState represents the current screen of the TUI application
type SessionState int

// ConfirmationMsg is a message to trigger a confirmation dialog
type ConfirmationMsg struct {
	Message string
	Action  func() tea.Cmd
}

const (
	AppName           = "pibble"
	DisplayName       = "ProtectPibble"
	Version           = "v0.3.0"
	DefaultConfigFile = "~/.config/pibble/config.yaml"

	// Keyring entries. The service name is shared with the web client's storage prefix.
	KeyringService       = "protectpibble"
	KeyringAuthTokenUser = "authToken"
	KeyringDemoEmailUser = "demoEmail"
	KeyringDemoNameUser  = "demoName"
	KeyringCacheConnUser = "cache-connection"

	// Defaults for the API and clocks
	DefaultReferenceZone   = "America/Los_Angeles"
	DefaultHTTPTimeout     = 15 * time.Second
	DefaultRefreshInterval = 15 * time.Second
	ClockTickInterval      = time.Second

	// TokenExpiryLeeway is how close to exp a token may be before it is treated as expired
	TokenExpiryLeeway = 60 * time.Second

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DisplayFormat renders an instant in the reference zone; the zone label is appended separately
	DisplayFormat = "Jan 02, 2006 03:04 PM"

	// ClockFormat is the 24h clock shown in the dashboard header
	ClockFormat = "01/02/2006, 15:04:05"

	// WireFormat matches the millisecond ISO-8601 form the backend expects for dueAt
	WireFormat = "2006-01-02T15:04:05.000Z"

	// Dashboard limits
	RecentEventsLimit = 15
	MinPenalty        = 1
	MinInitialHealth  = 1
	MaxInitialHealth  = 1000
	DefaultHealth     = 100
)

// Session States
const (
	StateLoading SessionState = iota
	StateGroups
	StateDashboard
	StateLogin
	StateCreateGroup
	StateJoinGroup
	StateCreateTask
	StateEditTask
	StateGradeEntry
	StateFilters
	StateNudge
	StateConfirmation
)
