package prompt

import (
	"fmt"
	"strings"
	"testing"

	"serieskeeper/internal/continuity"
)

func TestBuildContext_Empty(t *testing.T) {
	if got := BuildContext(continuity.Summary{SeriesTitle: "Ember", ForBookNumber: 2}); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestBuildContext_AllSections(t *testing.T) {
	summary := continuity.Summary{
		ActiveCharacters: []continuity.Character{{
			Name:          "Aria",
			CurrentStatus: "alive",
			Location:      "Keep",
			ArcStage:      continuity.ArcDevelopment,
			Relationships: map[string]string{"Cael": "rival", "Bren": "brother"},
			Knowledge:     []string{"k1", "k2", "k3", "k4"},
		}},
		ActivePlotThreads: []continuity.PlotThread{{
			Name:                "Feud",
			Description:         "An old grudge",
			IntroducedBook:      1,
			ImportanceLevel:     continuity.ImportanceSubplot,
			ConnectedCharacters: []string{"Aria", "Bren"},
		}},
		EstablishedWorldElements: []continuity.WorldElement{{
			Name:                "The Ember",
			Type:                "artifact",
			Description:         "A living flame",
			FirstIntroducedBook: 1,
		}},
		TimelineEvents: []continuity.TimelineEvent{{BookNumber: 1, Title: "The Spark"}},
	}

	got := BuildContext(summary)

	for _, want := range []string{
		"Established Characters:\n",
		"- Aria: Alive, located in Keep, arc stage Development\n",
		"  Relationships: Bren (brother), Cael (rival)\n",
		"  Knows: k2; k3; k4\n",
		"Active Plot Threads:\n",
		"- Feud (introduced in Book 1, Subplot): An old grudge\n",
		"  Characters involved: Aria, Bren\n",
		"Established World Elements:\n",
		"- The Ember (Artifact, introduced in Book 1): A living flame\n",
		"Previous Timeline Events:\n",
		"- Book 1: The Spark\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in context:\n%s", want, got)
		}
	}
	if strings.Contains(got, "k1") {
		t.Fatalf("expected only the last three knowledge items:\n%s", got)
	}

	order := []string{"Established Characters", "Active Plot Threads", "Established World Elements", "Previous Timeline Events"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(got, heading)
		if idx <= last {
			t.Fatalf("expected %q after previous section:\n%s", heading, got)
		}
		last = idx
	}
}

func TestBuildContext_OmitsEmptySections(t *testing.T) {
	got := BuildContext(continuity.Summary{
		ActivePlotThreads: []continuity.PlotThread{{Name: "Quest", Description: "Find it", IntroducedBook: 1, ImportanceLevel: continuity.ImportanceMajor}},
	})
	if strings.Contains(got, "Established Characters") || strings.Contains(got, "Previous Timeline Events") {
		t.Fatalf("expected only the thread section:\n%s", got)
	}
	if strings.Contains(got, "Characters involved") {
		t.Fatalf("expected no connected characters line:\n%s", got)
	}
}

func TestBuildContext_LastFiveEvents(t *testing.T) {
	var events []continuity.TimelineEvent
	for book := 1; book <= 7; book++ {
		events = append(events, continuity.TimelineEvent{BookNumber: book, Title: fmt.Sprintf("Event %d", book)})
	}
	got := BuildContext(continuity.Summary{TimelineEvents: events})

	if strings.Contains(got, "Event 1\n") || strings.Contains(got, "Event 2\n") {
		t.Fatalf("expected the two oldest events dropped:\n%s", got)
	}
	if !strings.Contains(got, "- Book 3: Event 3\n") || !strings.Contains(got, "- Book 7: Event 7\n") {
		t.Fatalf("expected events 3 through 7:\n%s", got)
	}
}
