package main

import (
	"errors"
	"io"

	"bitbucket.org/mmdatafocus/scm_backend/console"
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"bitbucket.org/mmdatafocus/scm_backend/workflow"
	"github.com/spf13/cobra"
)

type ConsoleOptions struct {
	*RootOptions
	Once    bool
	Migrate bool
}

func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsoleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Register purchase orders interactively",
		Long: `Prompt for a purchase order and commit it together with its initial
delivery and the inventory increase, as one transaction.

Example:
  scmctl console --driver sqlite --sqlite-path scm.db --migrate
  scmctl console --once < order.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "register a single order without the menu")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "run migrations before starting")

	return cmd
}

func runConsole(opts *ConsoleOptions, cmd *cobra.Command) error {
	logger, closeLog, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	db, closeDB, err := opts.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if opts.Migrate {
		if err := models.MigrateTable(db); err != nil {
			return err
		}
	}

	committer := workflow.NewOrderCommitter(db, logger)
	if opts.settings.OrderCommitMaxAttempts > 0 {
		committer.MaxAttempts = opts.settings.OrderCommitMaxAttempts
	}
	if opts.settings.OrderCommitRetryBase > 0 {
		committer.BaseDelay = opts.settings.OrderCommitRetryBase
	}
	registration := &console.OrderRegistration{Committer: committer, Logger: logger}

	ctx := cmd.Context()
	if opts.Once {
		err = registration.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		err = (&console.Menu{Registration: registration}).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
