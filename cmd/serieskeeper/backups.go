package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"serieskeeper/internal/persist"
)

func backupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List the retained state snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			manager, err := persist.NewManager(persist.Options{
				Dir:       a.cfg.StateDir(),
				FileName:  a.cfg.State.File,
				Retention: a.cfg.State.BackupRetention,
				Schema:    a.schema,
				Logger:    a.logger,
				Metrics:   a.metrics,
			})
			if err != nil {
				return err
			}

			backups, err := manager.Backups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
				return nil
			}

			rows := make([][]string, 0, len(backups))
			for _, b := range backups {
				rows = append(rows, []string{
					b.Name,
					b.Timestamp.Format(time.DateTime),
					humanize.Bytes(uint64(b.Size)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Snapshot", "Taken", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
