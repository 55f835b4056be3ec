package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authkeeper",
		Short: "authkeeper - user authentication API",
		Long: `authkeeper serves registration, login, email confirmation and
password reset over HTTP, issuing bearer tokens for authenticated requests.
Configuration is read from the environment.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
