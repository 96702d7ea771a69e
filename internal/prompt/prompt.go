// Package prompt renders a continuity summary as plain text for the prompt
// of the next book's generation.
package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"serieskeeper/internal/continuity"
)

// Limits on how much of each history is repeated into the prompt.
const (
	RecentKnowledgeItems = 3
	RecentTimelineEvents = 5
)

// BuildContext renders summary as prompt text. Empty categories are left
// out; a summary with no entities renders as "".
func BuildContext(summary continuity.Summary) string {
	title := cases.Title(language.Und)
	sections := make([]string, 0, 4)

	if len(summary.ActiveCharacters) > 0 {
		sections = append(sections, renderCharacters(title, summary.ActiveCharacters))
	}
	if len(summary.ActivePlotThreads) > 0 {
		sections = append(sections, renderThreads(title, summary.ActivePlotThreads))
	}
	if len(summary.EstablishedWorldElements) > 0 {
		sections = append(sections, renderElements(title, summary.EstablishedWorldElements))
	}
	if len(summary.TimelineEvents) > 0 {
		sections = append(sections, renderTimeline(summary.TimelineEvents))
	}
	return strings.Join(sections, "\n")
}

func renderCharacters(title cases.Caser, characters []continuity.Character) string {
	var b strings.Builder
	b.WriteString("Established Characters:\n")
	for _, c := range characters {
		fmt.Fprintf(&b, "- %s: %s, located in %s", c.Name, title.String(c.CurrentStatus), c.Location)
		if c.ArcStage != "" {
			fmt.Fprintf(&b, ", arc stage %s", title.String(string(c.ArcStage)))
		}
		b.WriteString("\n")
		if rels := formatRelationships(c.Relationships); rels != "" {
			fmt.Fprintf(&b, "  Relationships: %s\n", rels)
		}
		if known := lastN(c.Knowledge, RecentKnowledgeItems); len(known) > 0 {
			fmt.Fprintf(&b, "  Knows: %s\n", strings.Join(known, "; "))
		}
	}
	return b.String()
}

func renderThreads(title cases.Caser, threads []continuity.PlotThread) string {
	var b strings.Builder
	b.WriteString("Active Plot Threads:\n")
	for _, p := range threads {
		fmt.Fprintf(&b, "- %s (introduced in Book %d, %s): %s\n",
			p.Name, p.IntroducedBook, title.String(string(p.ImportanceLevel)), p.Description)
		if len(p.ConnectedCharacters) > 0 {
			fmt.Fprintf(&b, "  Characters involved: %s\n", strings.Join(p.ConnectedCharacters, ", "))
		}
	}
	return b.String()
}

func renderElements(title cases.Caser, elements []continuity.WorldElement) string {
	var b strings.Builder
	b.WriteString("Established World Elements:\n")
	for _, w := range elements {
		fmt.Fprintf(&b, "- %s (%s, introduced in Book %d): %s\n",
			w.Name, title.String(w.Type), w.FirstIntroducedBook, w.Description)
	}
	return b.String()
}

func renderTimeline(events []continuity.TimelineEvent) string {
	var b strings.Builder
	b.WriteString("Previous Timeline Events:\n")
	for _, e := range lastN(events, RecentTimelineEvents) {
		fmt.Fprintf(&b, "- Book %d: %s\n", e.BookNumber, e.Title)
	}
	return b.String()
}

// formatRelationships lists relationships by name so the output is stable.
func formatRelationships(rels map[string]string) string {
	if len(rels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rels))
	for _, name := range slices.Sorted(maps.Keys(rels)) {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, rels[name]))
	}
	return strings.Join(parts, ", ")
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
