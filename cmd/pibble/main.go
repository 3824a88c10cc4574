package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/auth"
	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/cli/account"
	"github.com/julianstephens/pibble/internal/cli/groups"
	"github.com/julianstephens/pibble/internal/cli/system"
	"github.com/julianstephens/pibble/internal/cli/tasks"
	"github.com/julianstephens/pibble/internal/config"
	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
	pibbleerrors "github.com/julianstephens/pibble/internal/errors"
	"github.com/julianstephens/pibble/internal/logger"
	"github.com/julianstephens/pibble/internal/service"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_file}"`
	API     string `name:"api" help:"ProtectPibble server address (overrides PIBBLE_API_BASE_URL)."`
	Zone    string `help:"Reference IANA zone for due dates (overrides PIBBLE_REFERENCE_ZONE)."`
	Cache   string `help:"Cache location: SQLite path, postgres:// or redis:// URL, 'memory', or 'keyring'."`
	Debug   bool   `help:"Verbose logging to stderr."`

	Tui      system.TuiCmd       `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Register account.RegisterCmd `cmd:"" help:"Create an account and sign in."`
	Login    account.LoginCmd    `cmd:"" help:"Sign in."`
	Logout   account.LogoutCmd   `cmd:"" help:"Sign out and forget the stored session."`
	Whoami   account.WhoamiCmd   `cmd:"" help:"Show the signed-in identity."`
	Groups   struct {
		List   groups.GroupsListCmd   `cmd:"" help:"List your groups." default:"1"`
		Create groups.GroupsCreateCmd `cmd:"" help:"Create a group for a class."`
		Join   groups.GroupsJoinCmd   `cmd:"" help:"Join a group with an invite code."`
	} `cmd:"" help:"Manage study groups."`
	Tasks tasks.TasksCmd `cmd:"" help:"List a group's tasks."`
	Task  struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a task to a group."`
		Done   tasks.TaskDoneCmd   `cmd:"" help:"Mark a task done, optionally with a grade."`
		Undo   tasks.TaskUndoCmd   `cmd:"" help:"Mark a task not done."`
		Excuse tasks.TaskExcuseCmd `cmd:"" help:"Mark a task excused."`
		Edit   tasks.TaskEditCmd   `cmd:"" help:"Edit a task."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete a task."`
	} `cmd:"" help:"Manage tasks."`
	Nudge   groups.NudgeCmd  `cmd:"" help:"Nudge a group member."`
	Clock   system.ClockCmd  `cmd:"" help:"Show the current time in the reference zone."`
	Doctor  system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	CacheOp struct {
		Clear   system.CacheClearCmd   `cmd:"" help:"Drop every cached response."`
		Migrate system.CacheMigrateCmd `cmd:"" help:"Apply cache schema migrations."`
	} `cmd:"" name:"cache" help:"Manage the response cache."`
	Keyring struct {
		Status system.KeyringStatusCmd `cmd:"" help:"Show what is stored in the OS keyring." default:"1"`
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the cache connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Terminal companion for ProtectPibble study groups"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	appCtx, err := setup(strings.Fields(ctx.Command())[0])
	if err != nil {
		pibbleerrors.Fatalf("could not start: %s", pibbleerrors.Describe(err))
	}

	err = ctx.Run(appCtx)
	appCtx.Cache.Close()
	pibbleerrors.Fatal(err)
}

// setup builds the command context. doctor still runs with an invalid
// configuration so it can report the problem.
func setup(command string) (*cli.Context, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		APIBaseURL:    CLI.API,
		ReferenceZone: CLI.Zone,
		Cache:         CLI.Cache,
		Debug:         CLI.Debug,
	})

	zone := duedate.MustLoadDefaultZone()
	if err := cfg.Validate(); err != nil {
		if command != "doctor" {
			return nil, err
		}
	} else if zone, err = cfg.Zone(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	session := auth.NewSession()
	if err := session.Hydrate(); err != nil {
		logger.Warn("Could not read the stored session", "error", err)
	}

	store, cacheErr := openCache(cfg)
	if cacheErr != nil {
		logger.Warn("Cache unavailable, using memory", "location", cfg.Cache, "error", cacheErr)
		store = cache.NewMemory()
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	client := api.New(cfg.APIBaseURL, session, api.WithTimeout(timeout))

	return &cli.Context{
		Config:   cfg,
		Service:  service.New(client, session, store, service.WithZone(zone)),
		Cache:    store,
		CacheErr: cacheErr,
	}, nil
}

func openCache(cfg *config.Config) (cache.Provider, error) {
	store, err := cli.NewCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
