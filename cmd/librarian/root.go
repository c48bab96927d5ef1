package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the librarian CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "librarian",
		Short: "Library rental service",
		Long: `librarian serves the library REST API (staff accounts, catalog,
clients and rentals) and manages its database schema.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}
