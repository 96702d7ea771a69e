package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var seriesName string
	var stateDir string
	var totalBooks int
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a series project and its empty state file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(seriesName) == "" {
				return fmt.Errorf("--name is required")
			}
			if totalBooks < 0 {
				return fmt.Errorf("--total-books must not be negative")
			}
			return runInit(cmd, seriesName, stateDir, totalBooks, dsn)
		},
	}
	cmd.Flags().StringVar(&seriesName, "name", "", "Series title")
	cmd.Flags().StringVar(&stateDir, "dir", "./series", "Directory for the state file and backups")
	cmd.Flags().IntVar(&totalBooks, "total-books", 0, "Number of books planned")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Optional database DSN for the SQL mirror (sqlite://... or postgres://...)")
	return cmd
}

func runInit(cmd *cobra.Command, seriesName, stateDir string, totalBooks int, dsn string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	configContents := fmt.Sprintf("series: %q\nversion: 1\ntotal_books: %d\n\nstate:\n  dir: %q\n  file: series_state.json\n  backup_retention: 5\n\nlogging:\n  level: info\n  format: text\n", seriesName, totalBooks, stateDir)
	if dsn != "" {
		configContents += fmt.Sprintf("\ndatabase:\n  dsn: %q\n", dsn)
	}
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	tracker, err := a.openTracker()
	if err != nil {
		return err
	}
	if err := tracker.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialised %q in %s\n", seriesName, tracker.Manager().Path())
	return nil
}
