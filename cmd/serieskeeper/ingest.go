package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"serieskeeper/internal/parser"
)

func ingestCmd() *cobra.Command {
	var bookNumber int
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Fold one book's generated data into the series continuity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], bookNumber, cmd.Flags().Changed("book"))
		},
	}
	cmd.Flags().IntVar(&bookNumber, "book", 0, "Book number; overrides book_number in the file")
	return cmd
}

func runIngest(cmd *cobra.Command, path string, bookNumber int, bookSet bool) error {
	book, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !bookSet {
		if !book.HasBookNumber {
			return fmt.Errorf("%s has no book_number; pass --book", path)
		}
		bookNumber = book.BookNumber
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	tracker, err := a.openTracker()
	if err != nil {
		return err
	}

	result, err := tracker.IngestBook(book.Fields, bookNumber)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Book %d ingested.\n", bookNumber)
	fmt.Fprintf(out, "  Characters updated: %d\n", result.CharactersUpdated)
	fmt.Fprintf(out, "  Plot threads added: %d\n", result.PlotThreadsAdded)
	fmt.Fprintf(out, "  Timeline events:    %d\n", result.EventsAdded)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nSkipped records (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(out, "  - %v\n", item)
		}
	}
	if result.SaveErr != nil {
		return fmt.Errorf("book %d applied but not saved: %w", bookNumber, result.SaveErr)
	}
	return nil
}
