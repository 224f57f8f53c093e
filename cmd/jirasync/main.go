package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/metashield/jirasync/internal/interfaces/cli/migrate"
	"github.com/metashield/jirasync/internal/interfaces/cli/server"
	"github.com/metashield/jirasync/internal/interfaces/cli/sync"
	"github.com/metashield/jirasync/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jirasync",
		Short: "jirasync - Jira security ticket synchronization",
		Long:  `jirasync mirrors security-event tickets from Jira into a relational store, keeps a per-field change history and serves the result over HTTP.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		sync.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
