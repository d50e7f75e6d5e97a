package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds the flags shared by every subcommand. Empty values fall back to the
// environment (.env / DB_* variables).
type RootOptions struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	LogLevel    string
	LogFile     string

	settings config.Settings
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scmctl",
		Short: "Supply chain order tooling",
		Long:  "Console order registration, schema migration, reference data seeding and API tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.settings = config.LoadSettings()
			return opts.apply()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (postgres|mysql|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "database DSN, overrides DB_* settings")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite database file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append JSON logs to this file instead of stderr")

	cmd.AddCommand(NewConsoleCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func (o *RootOptions) apply() error {
	if o.Driver != "" {
		o.settings.Database.Driver = strings.ToLower(o.Driver)
	}
	if o.DatabaseURL != "" {
		o.settings.Database.URL = o.DatabaseURL
	}
	if o.SQLitePath != "" {
		o.settings.Database.SQLitePath = o.SQLitePath
	}
	if o.LogLevel != "" {
		o.settings.LogLvl = o.LogLevel
	}
	switch o.settings.Database.Driver {
	case config.DriverPostgres, config.DriverMySQL, config.DriverSQLite:
		return nil
	default:
		return fmt.Errorf("invalid driver %q: must be one of postgres, mysql, sqlite", o.settings.Database.Driver)
	}
}

// logger writes to --log-file when given so console prompts stay readable.
func (o *RootOptions) logger(stderr io.Writer) (*logrus.Logger, func(), error) {
	logger := config.NewLogger(o.settings.LogLvl, "json")
	if o.LogFile == "" {
		logger.SetOutput(stderr)
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}

func (o *RootOptions) openDatabase() (*gorm.DB, func(), error) {
	db, err := config.ConnectDatabaseWithRetry(o.settings.Database, 3)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
