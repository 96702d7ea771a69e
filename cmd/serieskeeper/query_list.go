package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"serieskeeper/internal/continuity"
)

func queryCharactersCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}

			var matched []continuity.Character
			for _, c := range tracker.Characters() {
				if status == "" || strings.EqualFold(c.CurrentStatus, status) {
					matched = append(matched, c)
				}
			}
			if len(matched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No characters found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), characterTable(matched))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by current status (case-insensitive)")
	return cmd
}

func queryThreadsCmd() *cobra.Command {
	var status string
	var importance string
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List plot threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !continuity.ValidThreadStatuses[continuity.ThreadStatus(status)] {
				return fmt.Errorf("unknown status %q", status)
			}
			if importance != "" && !continuity.ValidImportances[continuity.Importance(importance)] {
				return fmt.Errorf("unknown importance %q", importance)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}

			var matched []continuity.PlotThread
			for _, p := range tracker.PlotThreads() {
				if status != "" && string(p.Status) != status {
					continue
				}
				if importance != "" && string(p.ImportanceLevel) != importance {
					continue
				}
				matched = append(matched, p)
			}
			if len(matched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plot threads found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), threadTable(matched))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, resolved, dormant, abandoned)")
	cmd.Flags().StringVar(&importance, "importance", "", "Filter by importance (major, minor, subplot)")
	return cmd
}

func queryElementsCmd() *cobra.Command {
	var elementType string
	cmd := &cobra.Command{
		Use:   "elements",
		Short: "List world elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}

			var matched []continuity.WorldElement
			for _, w := range tracker.WorldElements() {
				if elementType == "" || strings.EqualFold(w.Type, elementType) {
					matched = append(matched, w)
				}
			}
			if len(matched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No world elements found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), elementTable(matched))
			return nil
		},
	}
	cmd.Flags().StringVar(&elementType, "type", "", "Filter by element type (case-insensitive)")
	return cmd
}
