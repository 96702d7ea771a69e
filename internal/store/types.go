package store

import (
	"encoding/json"
	"fmt"
	"time"

	"serieskeeper/internal/continuity"
)

type SeriesRow struct {
	Title             string
	CurrentBookNumber int
	TotalBooksPlanned int
	LastUpdated       time.Time
	Timeline          []byte
}

type CharacterRow struct {
	Series             string
	Name               string
	Status             string
	Location           string
	ArcStage           string
	LastAppearanceBook int
	Relationships      map[string]string
	Abilities          []string
	Knowledge          []string
}

type PlotThreadRow struct {
	Series            string
	ThreadID          string
	Name              string
	Description       string
	Status            string
	Importance        string
	IntroducedBook    int
	LastMentionedBook int
	ResolutionBook    *int
	Characters        []string
}

type WorldElementRow struct {
	Series              string
	ElementID           string
	Name                string
	Type                string
	Description         string
	CurrentState        string
	FirstIntroducedBook int
	LastMentionedBook   int
	Rules               []byte
}

type TimelineEventRow struct {
	Series     string
	Position   int
	BookNumber int
	Title      string
	Details    []byte
}

// SeriesRows is one series flattened into table rows. List and map columns
// the backends cannot hold natively are carried as JSON.
type SeriesRows struct {
	Series     SeriesRow
	Characters []CharacterRow
	Threads    []PlotThreadRow
	Elements   []WorldElementRow
	Events     []TimelineEventRow
}

// RowsFromSnapshot flattens snap for a sync.
func RowsFromSnapshot(snap continuity.Snapshot) (SeriesRows, error) {
	timeline, err := json.Marshal(snap.Timeline)
	if err != nil {
		return SeriesRows{}, fmt.Errorf("marshaling timeline: %w", err)
	}

	rows := SeriesRows{
		Series: SeriesRow{
			Title:             snap.SeriesTitle,
			CurrentBookNumber: snap.CurrentBookNumber,
			TotalBooksPlanned: snap.TotalBooksPlanned,
			LastUpdated:       snap.LastUpdated,
			Timeline:          timeline,
		},
	}

	for _, c := range snap.Characters {
		rows.Characters = append(rows.Characters, CharacterRow{
			Series:             snap.SeriesTitle,
			Name:               c.Name,
			Status:             c.CurrentStatus,
			Location:           c.Location,
			ArcStage:           string(c.ArcStage),
			LastAppearanceBook: c.LastAppearanceBook,
			Relationships:      c.Relationships,
			Abilities:          c.Abilities,
			Knowledge:          c.Knowledge,
		})
	}

	for _, p := range snap.PlotThreads {
		rows.Threads = append(rows.Threads, PlotThreadRow{
			Series:            snap.SeriesTitle,
			ThreadID:          p.ThreadID,
			Name:              p.Name,
			Description:       p.Description,
			Status:            string(p.Status),
			Importance:        string(p.ImportanceLevel),
			IntroducedBook:    p.IntroducedBook,
			LastMentionedBook: p.LastMentionedBook,
			ResolutionBook:    p.ResolutionBook,
			Characters:        p.ConnectedCharacters,
		})
	}

	for _, w := range snap.WorldElements {
		rules, err := json.Marshal(w.RulesAndProperties)
		if err != nil {
			return SeriesRows{}, fmt.Errorf("marshaling rules of %s: %w", w.ElementID, err)
		}
		rows.Elements = append(rows.Elements, WorldElementRow{
			Series:              snap.SeriesTitle,
			ElementID:           w.ElementID,
			Name:                w.Name,
			Type:                w.Type,
			Description:         w.Description,
			CurrentState:        w.CurrentState,
			FirstIntroducedBook: w.FirstIntroducedBook,
			LastMentionedBook:   w.LastMentionedBook,
			Rules:               rules,
		})
	}

	for i, e := range snap.Timeline.Events {
		details, err := json.Marshal(e.Details)
		if err != nil {
			return SeriesRows{}, fmt.Errorf("marshaling timeline event %d: %w", i, err)
		}
		rows.Events = append(rows.Events, TimelineEventRow{
			Series:     snap.SeriesTitle,
			Position:   i,
			BookNumber: e.BookNumber,
			Title:      e.Title,
			Details:    details,
		})
	}

	return rows, nil
}
