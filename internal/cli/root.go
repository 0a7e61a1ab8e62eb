package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/config"
	"mops-cli/internal/controller"
	"mops-cli/internal/dnd"
	"mops-cli/internal/format"
	"mops-cli/internal/loader"
	"mops-cli/internal/logging"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"
	"mops-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	APIURL     string
	OrgID      string
	Token      string
	Timeout    time.Duration
	Format     string
	PrettyJSON bool
	Verbose    bool

	cfg config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mops",
		Short:        "Marketing ops client: campaigns, task boards and the content calendar",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  mops

  # Scriptable commands
  mops campaigns list --status planning --sort priority
  mops tasks move cmp-launch tsk-ads in_progress
  mops calendar schedule cnt-teaser --at 2025-03-14T15:00:00Z

  # Direct campaign lookup (shortcut for: mops campaigns show <campaign-id>)
  mops cmp-launch

  # Local backend with demo data
  mops serve --seed
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("api-url") {
			cfg.APIURL = strings.TrimRight(strings.TrimSpace(app.APIURL), "/")
		}
		if flags.Changed("org") {
			cfg.OrgID = strings.TrimSpace(app.OrgID)
		}
		if flags.Changed("token") {
			cfg.Token = strings.TrimSpace(app.Token)
		}
		if flags.Changed("timeout") {
			cfg.Timeout = app.Timeout
		}
		app.cfg = cfg

		opts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Development: cfg.Log.Development, Verbose: app.Verbose}
		if cmd == cmd.Root() && opts.File == "" {
			// The TUI owns the terminal.
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			opts.File = logging.DefaultTUIFile(dir)
		}
		log, err := logging.New(opts)
		if err != nil {
			return err
		}
		app.log = log
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides apiUrl in config.yaml and MOPS_API_URL)")
	cmd.PersistentFlags().StringVar(&app.OrgID, "org", "", "Organization id (overrides orgId in config.yaml and MOPS_ORG_ID)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token (overrides MOPS_TOKEN)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", config.DefaultTimeout, "Per-request timeout")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MOPS_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newCampaignsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	d, err := app.deps()
	if err != nil {
		return err
	}
	ui, err := config.LoadUIState()
	if err != nil {
		return err
	}
	view, err := dnd.ParseCalendarView(app.cfg.TUI.CalendarView)
	if err != nil {
		view = dnd.ViewWeek
	}
	if ui.CalendarView != "" {
		if v, err := dnd.ParseCalendarView(ui.CalendarView); err == nil {
			view = v
		}
	}

	final, err := tui.Run(cmd.Context(), tui.Options{
		API:          d.API,
		Store:        d.Store,
		Loader:       d.Loader,
		Notify:       d.Notify,
		Logger:       d.Logger,
		Profile:      app.cfg.TUI.Profile,
		CalendarView: view,
		State:        *ui,
	})
	if saveErr := config.SaveUIState(&final); saveErr != nil {
		app.log.Warn("save ui state", zap.Error(saveErr))
	}
	return err
}

// client returns an API client for the resolved config, or the reason the
// config cannot reach a backend.
func (app *App) client() (*api.Client, error) {
	if err := app.cfg.Validate(); err != nil {
		return nil, err
	}
	return api.New(app.cfg.APIURL, app.cfg.OrgID,
		api.WithToken(app.cfg.Token),
		api.WithTimeout(app.cfg.Timeout),
		api.WithLogger(app.logger()),
	), nil
}

// deps wires a fresh store, fetch coordinator and notifier to the backend.
// Each command invocation owns its own store.
func (app *App) deps() (controller.Deps, error) {
	c, err := app.client()
	if err != nil {
		return controller.Deps{}, err
	}
	log := app.logger()
	return controller.Deps{
		Store:  store.New(),
		API:    c,
		Loader: loader.New(),
		Notify: notify.New(notify.DefaultCapacity, log),
		Logger: log,
	}, nil
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut writes v as the command result. meta, when non-nil, rides next to
// data in the envelope.
func writeOut(cmd *cobra.Command, app *App, v any, meta any) error {
	out := map[string]any{"data": v}
	if meta != nil {
		out["meta"] = meta
	}
	return format.Write(cmd.OutOrStdout(), out, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
