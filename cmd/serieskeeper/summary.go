package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"serieskeeper/internal/continuity"
)

func summaryCmd() *cobra.Command {
	var forBook int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show what is established before a book",
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
			summary := tracker.Summary(forBook)

			if asJSON {
				payload, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding summary: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}
	cmd.Flags().IntVar(&forBook, "book", 0, "Target book (defaults to the current book)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func renderSummary(s continuity.Summary) string {
	var b strings.Builder
	title := s.SeriesTitle
	if title == "" {
		title = "Untitled series"
	}
	fmt.Fprintf(&b, "%s: continuity before book %d", title, s.ForBookNumber)
	if s.TotalBooksPlanned > 0 {
		fmt.Fprintf(&b, " of %d", s.TotalBooksPlanned)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Characters: %d active of %d\n", s.Stats.ActiveCharacters, s.Stats.TotalCharacters)
	fmt.Fprintf(&b, "Plot threads: %d active of %d\n", s.Stats.ActivePlotThreads, s.Stats.TotalPlotThreads)
	fmt.Fprintf(&b, "World elements: %d\n", s.Stats.TotalWorldElements)
	fmt.Fprintf(&b, "Timeline events: %d\n", s.Stats.TotalEvents)

	if len(s.ActiveCharacters) > 0 {
		b.WriteString("\n")
		b.WriteString(characterTable(s.ActiveCharacters))
		b.WriteString("\n")
	}
	if len(s.ActivePlotThreads) > 0 {
		b.WriteString("\n")
		b.WriteString(threadTable(s.ActivePlotThreads))
		b.WriteString("\n")
	}
	if len(s.EstablishedWorldElements) > 0 {
		b.WriteString("\n")
		b.WriteString(elementTable(s.EstablishedWorldElements))
		b.WriteString("\n")
	}
	if len(s.TimelineEvents) > 0 {
		rows := make([][]string, 0, len(s.TimelineEvents))
		for _, ev := range s.TimelineEvents {
			rows = append(rows, []string{itoa(ev.BookNumber), ev.Title})
		}
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Book", "Event"}, rows, []columnAlignment{alignRight, alignLeft}))
		b.WriteString("\n")
	}
	return b.String()
}

func characterTable(characters []continuity.Character) string {
	rows := make([][]string, 0, len(characters))
	for _, c := range characters {
		rows = append(rows, []string{c.Name, c.CurrentStatus, c.Location, string(c.ArcStage), itoa(c.LastAppearanceBook)})
	}
	return renderTable(
		[]string{"Character", "Status", "Location", "Arc", "Last book"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func threadTable(threads []continuity.PlotThread) string {
	rows := make([][]string, 0, len(threads))
	for _, p := range threads {
		rows = append(rows, []string{
			p.ThreadID, p.Name, string(p.Status), string(p.ImportanceLevel),
			itoa(p.IntroducedBook), bookCell(p.ResolutionBook),
		})
	}
	return renderTable(
		[]string{"Thread", "Name", "Status", "Importance", "Introduced", "Resolved"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func elementTable(elements []continuity.WorldElement) string {
	rows := make([][]string, 0, len(elements))
	for _, w := range elements {
		rows = append(rows, []string{w.ElementID, w.Name, w.Type, w.CurrentState, itoa(w.FirstIntroducedBook)})
	}
	return renderTable(
		[]string{"Element", "Name", "Type", "State", "Introduced"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
