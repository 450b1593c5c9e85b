package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/db"
)

// app holds state shared by all subcommands.
type app struct {
	configPath string
	dbPath     string
	addr       string
	logPath    string

	cfg      *config.Config
	closeLog func()
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Inventory tracking server",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: $INVENTORY_CONFIG or ./inventory.yaml)")
	flags.StringVarP(&a.dbPath, "db", "d", "", "SQLite database path")
	flags.StringVarP(&a.addr, "addr", "a", "", "listen address")
	flags.StringVarP(&a.logPath, "log", "l", "", "log file path (default: stdout/stderr only)")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newDBCommand(a))
	root.AddCommand(newUserCommand(a))

	return root
}

// load reads the configuration, applies flag overrides and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	cfg, _, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.addr != "" {
		cfg.Server.Addr = a.addr
	}
	if a.logPath != "" {
		cfg.Log.Path = a.logPath
	}
	a.cfg = cfg

	closeLog, err := setupLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Log.Path)
	if err != nil {
		return err
	}
	a.closeLog = closeLog
	return nil
}

// openDB opens the configured database and makes sure the schema exists.
func (a *app) openDB(ctx context.Context) (*sqlx.DB, error) {
	database, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}
