package main

import (
	"os"

	"github.com/spf13/cobra"

	"payflow/internal/interfaces/cli/migrate"
	"payflow/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payflow",
		Short: "Payflow - payment lifecycle and merchant notification service",
		Long:  `Payflow accepts payment requests, tracks provider resolution and delivers merchant notifications through a transactional outbox.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
