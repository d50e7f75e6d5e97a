package main

import (
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"github.com/spf13/cobra"
)

type TokenOptions struct {
	*RootOptions
	Name     string
	Role     string
	Lifespan time.Duration
}

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with API_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.settings.ApiSecret
			if secret == "" {
				return errors.New("API_SECRET is not set")
			}
			token, err := utils.JwtGenerate([]byte(secret), opts.Name, opts.Role, opts.Lifespan)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "engineer name carried in the token (required)")
	cmd.Flags().StringVar(&opts.Role, "role", "engineer", "role claim")
	cmd.Flags().DurationVar(&opts.Lifespan, "lifespan", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
