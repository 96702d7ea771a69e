package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func startBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start-book <number>",
		Short: "Advance the series to a new book and carry continuity forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book number %q", args[0])
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}
			if err := tracker.StartNewBook(n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now writing book %d.\n", n)
			return nil
		},
	}
}
