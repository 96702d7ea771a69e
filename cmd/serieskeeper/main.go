package main

import (
	"os"

	"github.com/spf13/cobra"

	"serieskeeper/internal/config"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "serieskeeper",
		Short:        "Continuity tracking for multi-book series generation",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultFileName, "Path to the project config file")

	root.AddCommand(initCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(startBookCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(contextCmd())
	root.AddCommand(notesCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(backupsCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}
