package main

import (
	"fmt"

	"bitbucket.org/mmdatafocus/scm_backend/models"
	"github.com/spf13/cobra"
)

type SeedOptions struct {
	*RootOptions
	Migrate bool
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample projects, suppliers, parts and warehouses",
		Long: `Insert sample reference data so orders can be registered against an empty
database. Rows that already exist are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			data := models.SampleReferenceData()
			if err := models.SeedReferenceData(db, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects, %d suppliers, %d parts, %d warehouses\n",
				len(data.Projects), len(data.Suppliers), len(data.Parts), len(data.Warehouses))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "run migrations before seeding")

	return cmd
}
