package cli

import (
	"fmt"
	"strings"
	"time"

	"mops-cli/internal/config"
	"mops-cli/internal/dnd"
	"mops-cli/internal/logging"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings (file, environment and flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return writeErr(cmd, err)
			}
			meta := map[string]any{"path": path}
			if err := app.cfg.Validate(); err != nil {
				meta["problem"] = err.Error()
			}
			return writeOut(cmd, app, app.cfg.Redacted(), meta)
		},
	}
	return cmd
}

var configKeys = []string{"api-url", "org", "timeout", "log-level", "log-file", "profile", "calendar-view"}

func newConfigSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Persist one setting to config.yaml",
		Long:      "Keys: " + strings.Join(configKeys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := config.ReadFile(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigKey(&cfg, args[0], strings.TrimSpace(args[1])); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, cfg.Redacted(), map[string]any{"path": path})
		},
	}
	return cmd
}

func setConfigKey(cfg *config.Config, key, v string) error {
	switch key {
	case "api-url":
		cfg.APIURL = strings.TrimRight(v, "/")
	case "org":
		cfg.OrgID = v
	case "timeout":
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	case "log-level":
		if _, err := logging.ParseLevel(v); err != nil {
			return err
		}
		cfg.Log.Level = strings.ToLower(v)
	case "log-file":
		cfg.Log.File = v
	case "profile":
		cfg.TUI.Profile = strings.ToLower(v)
	case "calendar-view":
		view, err := dnd.ParseCalendarView(v)
		if err != nil {
			return err
		}
		cfg.TUI.CalendarView = string(view)
	default:
		return fmt.Errorf("unknown key %q (expected one of: %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}
