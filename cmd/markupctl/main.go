// Command markupctl checks tactic files, previews markup chains and runs
// tender recalculations against the application database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Simplici0/tenderhub/internal/config"
	"github.com/Simplici0/tenderhub/internal/db"
	"github.com/Simplici0/tenderhub/internal/logger"
	"github.com/Simplici0/tenderhub/internal/migrations"
)

type cli struct {
	cfg      config.Config
	dbPath   string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "markupctl",
		Short:        "Markup tactic and tender recalculation tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFrom(".env")
			if err != nil {
				return err
			}
			c.cfg = cfg
			if c.dbPath == "" {
				c.dbPath = cfg.DBPath
			}
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = c.logLevel
			}
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "sqlite database path (default from DB_PATH)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCmd(),
		newEvalCmd(),
		newRecalcCmd(c),
		newExportCmd(c),
	)
	return root
}

// openDB opens the configured database and brings its schema up to date.
func (c *cli) openDB(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(ctx, c.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", c.dbPath, err)
	}
	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
