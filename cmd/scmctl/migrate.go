package main

import (
	"fmt"

	"bitbucket.org/mmdatafocus/scm_backend/models"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the order tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := rootOpts.openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := models.MigrateTable(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated (%s)\n", db.Dialector.Name())
			return nil
		},
	}
}
