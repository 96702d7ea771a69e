package continuity

import (
	"serieskeeper/internal/logging"
)

// SummaryStats counts the entities the store holds, independent of filtering.
type SummaryStats struct {
	TotalCharacters    int `json:"total_characters"`
	TotalPlotThreads   int `json:"total_plot_threads"`
	TotalWorldElements int `json:"total_world_elements"`
	TotalEvents        int `json:"total_timeline_events"`
	ActiveCharacters   int `json:"active_characters"`
	ActivePlotThreads  int `json:"active_plot_threads"`
}

// Summary is the set of entities established before a target book.
type Summary struct {
	SeriesTitle              string          `json:"series_title"`
	ForBookNumber            int             `json:"for_book_number"`
	TotalBooksPlanned        int             `json:"total_books_planned"`
	ActiveCharacters         []Character     `json:"active_characters"`
	ActivePlotThreads        []PlotThread    `json:"active_plot_threads"`
	EstablishedWorldElements []WorldElement  `json:"established_world_elements"`
	TimelineEvents           []TimelineEvent `json:"timeline_events"`
	Stats                    SummaryStats    `json:"summary_stats"`
}

// IsEmpty reports whether the summary carries no entities at all.
func (s Summary) IsEmpty() bool {
	return len(s.ActiveCharacters) == 0 &&
		len(s.ActivePlotThreads) == 0 &&
		len(s.EstablishedWorldElements) == 0 &&
		len(s.TimelineEvents) == 0
}

// CurrentSummary is ContinuitySummary for the store's current book.
func (s *Store) CurrentSummary() Summary {
	return s.ContinuitySummary(s.currentBookNumber)
}

// ContinuitySummary returns what is already established before forBook:
// present characters last seen earlier, active threads introduced earlier,
// world elements introduced earlier and timeline events of earlier books.
// Entities that fail validation are logged and left out.
func (s *Store) ContinuitySummary(forBook int) Summary {
	sum := Summary{
		SeriesTitle:              s.seriesTitle,
		ForBookNumber:            forBook,
		TotalBooksPlanned:        s.totalBooksPlanned,
		ActiveCharacters:         []Character{},
		ActivePlotThreads:        []PlotThread{},
		EstablishedWorldElements: []WorldElement{},
		TimelineEvents:           []TimelineEvent{},
	}

	for _, name := range s.characterOrder {
		c := s.characters[name]
		if !IsPresentStatus(c.CurrentStatus) || c.LastAppearanceBook >= forBook {
			continue
		}
		if err := c.Validate(); err != nil {
			s.skipInvalid("character", name, forBook, err)
			continue
		}
		sum.ActiveCharacters = append(sum.ActiveCharacters, c.Clone())
	}

	for _, id := range s.threadOrder {
		p := s.threads[id]
		if p.Status != ThreadActive || p.IntroducedBook >= forBook {
			continue
		}
		if err := p.Validate(); err != nil {
			s.skipInvalid("plot_thread", id, forBook, err)
			continue
		}
		sum.ActivePlotThreads = append(sum.ActivePlotThreads, p.Clone())
	}

	for _, id := range s.elementOrder {
		w := s.elements[id]
		if w.FirstIntroducedBook >= forBook {
			continue
		}
		if err := w.Validate(); err != nil {
			s.skipInvalid("world_element", id, forBook, err)
			continue
		}
		sum.EstablishedWorldElements = append(sum.EstablishedWorldElements, w.Clone())
	}

	timeline := s.timeline.Clone()
	for _, event := range timeline.Events {
		if event.BookNumber < forBook {
			sum.TimelineEvents = append(sum.TimelineEvents, event)
		}
	}

	sum.Stats = SummaryStats{
		TotalCharacters:    len(s.characterOrder),
		TotalPlotThreads:   len(s.threadOrder),
		TotalWorldElements: len(s.elementOrder),
		TotalEvents:        len(s.timeline.Events),
		ActiveCharacters:   len(sum.ActiveCharacters),
		ActivePlotThreads:  len(sum.ActivePlotThreads),
	}
	return sum
}

func (s *Store) skipInvalid(kind, key string, book int, err error) {
	logging.Warn(s.logger, "skipping invalid entity in summary", "summary_entity_skipped",
		logging.String(logging.FieldEntityKind, kind),
		logging.String(logging.FieldEntityKey, key),
		logging.Int(logging.FieldBook, book),
		logging.Error(err),
		logging.String(logging.FieldImpact, "entity omitted from the continuity summary"),
	)
}
