package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/iankellyUW/relaxed-point-planner/internal/calendar"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/activities"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/backups"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/presets"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/syncs"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/system"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli/tasks"
	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/errors"
	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/notifier"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage/postgres"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage/sqlite"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Configuration directory." default:"~/.config/planner" type:"path"`
	DB        string `help:"Database file path, or a PostgreSQL connection string (credentials must NOT be embedded; use .pgpass or the environment)."`
	Timezone  string `help:"IANA timezone for schedule dates." default:"Local"`
	Debug     bool   `help:"Enable debug logging to stderr."`

	ClientID     string `help:"Calendar OAuth client id." env:"PLANNER_CALENDAR_CLIENT_ID"`
	ClientSecret string `help:"Calendar OAuth client secret." env:"PLANNER_CALENDAR_CLIENT_SECRET"`

	Activity struct {
		Add    activities.ActivityAddCmd    `cmd:"" help:"Add an activity to the current schedule."`
		List   activities.ActivityListCmd   `cmd:"" help:"List the current schedule." default:"1"`
		Delete activities.ActivityDeleteCmd `cmd:"" help:"Remove an activity from the current schedule."`
	} `cmd:"" help:"Manage the working schedule."`
	Preset struct {
		Save   presets.PresetSaveCmd   `cmd:"" help:"Save the current schedule as a preset."`
		List   presets.PresetListCmd   `cmd:"" help:"List saved presets." default:"1"`
		Load   presets.PresetLoadCmd   `cmd:"" help:"Load a preset into the current schedule."`
		Delete presets.PresetDeleteCmd `cmd:"" help:"Delete a preset."`
		Search presets.PresetSearchCmd `cmd:"" help:"Search presets by name, mood, or activity."`
	} `cmd:"" help:"Manage schedule presets."`
	Done   tasks.DoneCmd   `cmd:"" help:"Mark an activity done and credit its points."`
	Undone tasks.UndoneCmd `cmd:"" help:"Un-mark a completion and debit its points."`
	Points tasks.PointsCmd `cmd:"" help:"Show point totals."`
	Sync   struct {
		Connect    syncs.ConnectCmd    `cmd:"" help:"Store calendar credentials."`
		Test       syncs.TestCmd       `cmd:"" help:"Test the calendar connection."`
		Run        syncs.RunCmd        `cmd:"" help:"Push the current schedule to the calendar." default:"1"`
		Status     syncs.StatusCmd     `cmd:"" help:"Show sync state."`
		Disconnect syncs.DisconnectCmd `cmd:"" help:"Clear credentials and sync state."`
	} `cmd:"" help:"Remote calendar synchronization."`
	Export  backups.ExportCmd `cmd:"" help:"Export all data to a backup file."`
	Import  backups.ImportCmd `cmd:"" help:"Restore data from a backup file."`
	Init    system.InitCmd    `cmd:"" help:"Report storage initialization state."`
	Migrate system.MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks."`
	Wipe    system.WipeCmd    `cmd:"" help:"Delete all stored data."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal activity scheduler with point tracking and calendar sync"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.2.0"},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: CLI.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatalf("invalid timezone %q: %v", CLI.Timezone, err)
	}

	var structured storage.Provider
	if strings.HasPrefix(CLI.DB, "postgres://") || strings.HasPrefix(CLI.DB, "postgresql://") || strings.Contains(CLI.DB, "host=") {
		if _, err := postgres.ValidateConnString(CLI.DB); err != nil {
			errors.Fatal(err)
		}
		structured = postgres.New(CLI.DB)
	} else {
		dbPath := CLI.DB
		if dbPath == "" {
			dbPath = filepath.Join(CLI.ConfigDir, "planner.db")
		}
		structured = sqlite.NewStore(dbPath)
	}

	fallback := storage.NewFallback(storage.NewFileKV(filepath.Join(CLI.ConfigDir, "planner-store.json")))
	facade := storage.NewFacade(structured, fallback)
	if err := facade.Initialize(); err != nil {
		errors.Fatal(err)
	}
	defer facade.Close()

	n := notifier.New()
	coordinator := calendar.NewCoordinator(facade, calendar.Config{
		ClientID:     CLI.ClientID,
		ClientSecret: CLI.ClientSecret,
	}, n, loc)

	appCtx := &cli.Context{
		Store:    facade,
		Calendar: coordinator,
		Notifier: n,
		Location: loc,
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}
