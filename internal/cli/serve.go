package cli

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mops-cli/internal/config"
	"mops-cli/internal/devserver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		dbPath  string
		addr    string
		org     string
		token   string
		seed    bool
		latency time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local backend (SQLite) for development and demos",
		Example: strings.TrimSpace(`
  # In one terminal
  mops serve --seed --org acme

  # In another
  mops --api-url http://127.0.0.1:8787 --org acme campaigns list

  # Make request races visible in the TUI
  mops serve --seed --latency 800ms
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dbPath) == "" {
				dir, err := config.Dir()
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
				dbPath = filepath.Join(dir, "devserver.sqlite")
			}
			if org == "" {
				org = app.cfg.OrgID
			}
			if cmd.Flags().Changed("token") {
				token = app.Token
			}
			log := app.logger().Named("devserver")

			ctx := cmd.Context()
			srv, err := devserver.NewServer(ctx, devserver.Config{
				DBPath:  dbPath,
				Token:   token,
				Latency: latency,
				Logger:  log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			if seed {
				if strings.TrimSpace(org) == "" {
					return writeErr(cmd, errSeedNeedsOrg)
				}
				if err := srv.DB().Seed(ctx, org, time.Now()); err != nil {
					return writeErr(cmd, err)
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, err)
			}
			log.Info("listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("db", dbPath),
				zap.Bool("auth", token != ""),
				zap.Duration("latency", latency),
			)
			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default $MOPS_CONFIG_DIR/devserver.sqlite; :memory: for a throwaway backend)")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	cmd.Flags().StringVar(&org, "seed-org", "", "Organization to seed (default: the configured org)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed demo campaigns when the organization is empty")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Delay every API response")
	return cmd
}
