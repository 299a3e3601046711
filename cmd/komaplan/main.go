package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/cli/exceptions"
	"github.com/julianstephens/komaplan/internal/cli/plans"
	"github.com/julianstephens/komaplan/internal/cli/settings"
	"github.com/julianstephens/komaplan/internal/cli/system"
	"github.com/julianstephens/komaplan/internal/cli/targets"
	"github.com/julianstephens/komaplan/internal/config"
	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/keyring"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/storage"
	"github.com/julianstephens/komaplan/internal/storage/postgres"
	"github.com/julianstephens/komaplan/internal/storage/sqlite"
	"github.com/julianstephens/komaplan/internal/storage/workbook"
	"github.com/julianstephens/komaplan/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	Store     string `help:"Store: SQLite path, .xlsx plan workbook, PostgreSQL connection string (no password) or keyring[:profile]." env:"KOMAPLAN_STORE" default:"${store}"`
	Config    string `help:"Config file path." default:"${config}"`
	Debug     bool   `help:"Log debug output to stderr."`
	LogLevel  string `help:"Log level: debug, info, warn or error." env:"KOMAPLAN_LOG_LEVEL" name:"log-level"`
	LogFormat string `help:"Log file format." enum:"text,json,logfmt" default:"text" env:"KOMAPLAN_LOG_FORMAT" name:"log-format"`

	Init    system.InitCmd    `cmd:"" help:"Initialize komaplan storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run schema migrations or repair the plan workbook layout."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Snapshot the local store." default:"1"`
		List    system.BackupListCmd    `cmd:"" help:"List snapshots."`
		Restore system.BackupRestoreCmd `cmd:"" help:"Replace the store with a snapshot."`
	} `cmd:"" help:"Manage snapshots of a local SQLite or workbook store."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report whether the OS keyring is usable."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage plan settings."`
	Target   struct {
		Show   targets.ShowCmd   `cmd:"" help:"Show annual targets." default:"1"`
		Set    targets.SetCmd    `cmd:"" help:"Set one grade's target."`
		Edit   targets.EditCmd   `cmd:"" help:"Edit all six grades interactively."`
		Import targets.ImportCmd `cmd:"" help:"Import targets from a YAML file."`
	} `cmd:"" help:"Manage annual targets."`
	Exception struct {
		Add  exceptions.AddCmd  `cmd:"" help:"Record a manual session correction."`
		List exceptions.ListCmd `cmd:"" help:"List recorded corrections."`
	} `cmd:"" help:"Manage manual session corrections."`
	Plan struct {
		Run  plans.RunCmd  `cmd:"" help:"Recompute the daily plan and reports." default:"withargs"`
		Show plans.ShowCmd `cmd:"" help:"Show the stored plan by day, week or month."`
	} `cmd:"" help:"Generate and inspect the module plan."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Annual module-time (15-minute session) planner for elementary grades"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"store":   constants.DefaultStorePath,
			"config":  constants.DefaultConfigFile,
		},
	)

	configPath, err := utils.ExpandPath(CLI.Config)
	errs.Fatal(err)
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
		Level:     CLI.LogLevel,
		Format:    CLI.LogFormat,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cfg, err := config.Load(configPath)
	errs.Fatal(err)

	// keyring commands manage the credentials a store would need, so they run without one.
	var store storage.Provider
	if !strings.HasPrefix(ctx.Command(), "keyring") {
		store, err = openStore(CLI.Store)
		errs.Fatal(err)
		defer store.Close()

		// init creates the store; every other command needs it loaded.
		if selected := ctx.Selected(); selected != nil && selected.Name != "init" {
			if err := store.Load(); err != nil {
				store.Close()
				errs.Fatal(err)
			}
		}
	}

	appCtx := cli.NewContext(store, cfg)

	if err := ctx.Run(appCtx); err != nil {
		if store != nil {
			store.Close()
		}
		errs.Fatal(err)
	}
}

// openStore picks the backend from the store reference. Connection strings typed
// on the command line must not carry a password; keyring entries may.
func openStore(ref string) (storage.Provider, error) {
	fromKeyring := keyring.IsKeyringRef(ref)
	resolved, err := keyring.Resolve(ref)
	if err != nil {
		return nil, err
	}

	switch {
	case postgres.IsConnString(resolved):
		if _, err := postgres.ValidateConnString(resolved); err != nil {
			if !fromKeyring || !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w. Store passwords in ~/.pgpass or PGPASSWORD, or the whole connection string with 'komaplan keyring set'", err)
			}
		}
		logger.Debug("Using PostgreSQL store", "keyring", fromKeyring)
		return postgres.New(resolved), nil
	case fromKeyring:
		return nil, errs.Validation("keyring entry %q is not a PostgreSQL connection string", ref)
	}

	path, err := utils.ExpandPath(resolved)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		logger.Debug("Using workbook store", "path", path)
		return workbook.NewStore(path), nil
	}
	logger.Debug("Using SQLite store", "path", path)
	return sqlite.NewStore(path), nil
}
