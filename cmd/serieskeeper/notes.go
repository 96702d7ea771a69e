package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func notesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <character>",
		Short: "Show development notes for a character",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			a, err := loadApp()
			if err != nil {
				return err
			}
			tracker, err := a.openTracker()
			if err != nil {
				return err
			}
			notes, err := tracker.CharacterNotes(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (arc stage: %s)\n", notes.Name, notes.CurrentArcStage)
			printList(out, "Recent personality changes", notes.RecentPersonalityChanges)

			if len(notes.Relationships) > 0 {
				others := make([]string, 0, len(notes.Relationships))
				for other := range notes.Relationships {
					others = append(others, other)
				}
				sort.Strings(others)
				lines := make([]string, 0, len(others))
				for _, other := range others {
					lines = append(lines, fmt.Sprintf("%s (%s)", other, notes.Relationships[other]))
				}
				printList(out, "Relationships", lines)
			}
			printList(out, "Knowledge", notes.Knowledge)
			printList(out, "Abilities", notes.Abilities)
			printList(out, "Suggestions", notes.Suggestions)
			return nil
		},
	}
}

func printList(out io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
