package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func contextCmd() *cobra.Command {
	var forBook int
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the continuity prompt context for a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("book") {
				forBook = -1
			} else if forBook < 0 {
				return fmt.Errorf("--book must not be negative")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tracker.PromptContext(forBook))
			return nil
		},
	}
	cmd.Flags().IntVar(&forBook, "book", 0, "Target book (defaults to the current book)")
	return cmd
}
