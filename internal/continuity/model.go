// Package continuity holds the cross-book narrative state of one series:
// characters, plot threads, world elements and the series timeline.
//
// A Store is owned by exactly one series and mutated by a single sequential
// writer (ingest book N, summarize for N+1, ingest N+1). It performs no I/O;
// persistence lives in internal/persist.
package continuity

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	apperrors "serieskeeper/internal/errors"
)

// ArcStage is a coarse phase of a character's development. Values outside
// the four conventional stages are tolerated.
type ArcStage string

const (
	ArcBeginning   ArcStage = "beginning"
	ArcDevelopment ArcStage = "development"
	ArcClimax      ArcStage = "climax"
	ArcResolution  ArcStage = "resolution"
)

// ThreadStatus is the lifecycle state of a plot thread.
type ThreadStatus string

const (
	ThreadActive    ThreadStatus = "active"
	ThreadResolved  ThreadStatus = "resolved"
	ThreadDormant   ThreadStatus = "dormant"
	ThreadAbandoned ThreadStatus = "abandoned"
)

// ValidThreadStatuses are the allowed plot thread statuses.
var ValidThreadStatuses = map[ThreadStatus]bool{
	ThreadActive:    true,
	ThreadResolved:  true,
	ThreadDormant:   true,
	ThreadAbandoned: true,
}

// Importance ranks a plot thread.
type Importance string

const (
	ImportanceMajor   Importance = "major"
	ImportanceMinor   Importance = "minor"
	ImportanceSubplot Importance = "subplot"
)

// ValidImportances are the allowed plot thread importance levels.
var ValidImportances = map[Importance]bool{
	ImportanceMajor:   true,
	ImportanceMinor:   true,
	ImportanceSubplot: true,
}

// Character statuses that count as present in the story.
const (
	StatusAlive  = "alive"
	StatusActive = "active"
)

// IsPresentStatus reports whether a character status keeps the character in
// play for the next book.
func IsPresentStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusAlive, StatusActive:
		return true
	default:
		return false
	}
}

// Character is a tracked person keyed by name.
type Character struct {
	Name               string            `json:"name"`
	LastAppearanceBook int               `json:"last_appearance_book"`
	CurrentStatus      string            `json:"current_status"`
	Location           string            `json:"location"`
	Relationships      map[string]string `json:"relationships"`
	Abilities          []string          `json:"abilities"`
	Knowledge          []string          `json:"knowledge"`
	ArcStage           ArcStage          `json:"character_arc_stage"`
	PersonalityChanges []string          `json:"personality_changes"`
	PhysicalChanges    []string          `json:"physical_changes"`
}

// Validate checks the field-level invariants of a character.
func (c *Character) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, "character name is empty")
	}
	if c.LastAppearanceBook < 0 {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("character %q has negative last_appearance_book", c.Name))
	}
	if strings.TrimSpace(c.CurrentStatus) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("character %q has empty current_status", c.Name))
	}
	if strings.TrimSpace(c.Location) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("character %q has empty location", c.Name))
	}
	return nil
}

// Clone returns a deep copy.
func (c *Character) Clone() Character {
	out := *c
	out.Relationships = cloneStringMap(c.Relationships)
	out.Abilities = cloneStrings(c.Abilities)
	out.Knowledge = cloneStrings(c.Knowledge)
	out.PersonalityChanges = cloneStrings(c.PersonalityChanges)
	out.PhysicalChanges = cloneStrings(c.PhysicalChanges)
	return out
}

// BookEvent is a note attached to a specific book.
type BookEvent struct {
	BookNumber  int    `json:"book_number"`
	Description string `json:"description"`
}

// PlotThread is a narrative arc keyed by thread ID.
type PlotThread struct {
	ThreadID            string       `json:"thread_id"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	Status              ThreadStatus `json:"status"`
	IntroducedBook      int          `json:"introduced_book"`
	LastMentionedBook   int          `json:"last_mentioned_book"`
	ResolutionBook      *int         `json:"resolution_book,omitempty"`
	KeyEvents           []BookEvent  `json:"key_events"`
	ConnectedCharacters []string     `json:"connected_characters"`
	ImportanceLevel     Importance   `json:"importance_level"`
}

// Validate checks the field-level invariants of a plot thread.
func (p *PlotThread) Validate() error {
	if strings.TrimSpace(p.ThreadID) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, "plot thread id is empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("plot thread %q has empty name", p.ThreadID))
	}
	if !ValidThreadStatuses[p.Status] {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("plot thread %q has invalid status %q", p.ThreadID, p.Status))
	}
	if !ValidImportances[p.ImportanceLevel] {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("plot thread %q has invalid importance %q", p.ThreadID, p.ImportanceLevel))
	}
	if p.IntroducedBook < 0 || p.LastMentionedBook < 0 {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("plot thread %q has a negative book number", p.ThreadID))
	}
	if p.ResolutionBook != nil && *p.ResolutionBook < 0 {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("plot thread %q has negative resolution_book", p.ThreadID))
	}
	return nil
}

// Clone returns a deep copy.
func (p *PlotThread) Clone() PlotThread {
	out := *p
	if p.ResolutionBook != nil {
		book := *p.ResolutionBook
		out.ResolutionBook = &book
	}
	out.KeyEvents = slices.Clone(p.KeyEvents)
	if out.KeyEvents == nil {
		out.KeyEvents = []BookEvent{}
	}
	out.ConnectedCharacters = cloneStrings(p.ConnectedCharacters)
	return out
}

// WorldElement is a setting fact (place, organization, magic system...) keyed by element ID.
type WorldElement struct {
	ElementID            string         `json:"element_id"`
	Name                 string         `json:"name"`
	Type                 string         `json:"type"`
	Description          string         `json:"description"`
	FirstIntroducedBook  int            `json:"first_introduced_book"`
	LastMentionedBook    int            `json:"last_mentioned_book"`
	CurrentState         string         `json:"current_state"`
	RulesAndProperties   map[string]any `json:"rules_and_properties"`
	ChangesOverTime      []BookEvent    `json:"changes_over_time"`
	ConnectedCharacters  []string       `json:"connected_characters"`
	ConnectedPlotThreads []string       `json:"connected_plot_threads"`
}

// Validate checks the field-level invariants of a world element.
func (w *WorldElement) Validate() error {
	if strings.TrimSpace(w.ElementID) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, "world element id is empty")
	}
	if strings.TrimSpace(w.Name) == "" {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("world element %q has empty name", w.ElementID))
	}
	if w.FirstIntroducedBook < 0 || w.LastMentionedBook < 0 {
		return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("world element %q has a negative book number", w.ElementID))
	}
	return nil
}

// Clone returns a deep copy. Rule values are copied one level deep.
func (w *WorldElement) Clone() WorldElement {
	out := *w
	out.RulesAndProperties = maps.Clone(w.RulesAndProperties)
	if out.RulesAndProperties == nil {
		out.RulesAndProperties = map[string]any{}
	}
	out.ChangesOverTime = slices.Clone(w.ChangesOverTime)
	if out.ChangesOverTime == nil {
		out.ChangesOverTime = []BookEvent{}
	}
	out.ConnectedCharacters = cloneStrings(w.ConnectedCharacters)
	out.ConnectedPlotThreads = cloneStrings(w.ConnectedPlotThreads)
	return out
}

// TimelineEvent is a dated series event. Details carries any free fields
// beyond book number and title.
type TimelineEvent struct {
	BookNumber int            `json:"book_number"`
	Title      string         `json:"title"`
	Details    map[string]any `json:"details,omitempty"`
}

// SeasonMarker places a book in the in-world calendar.
type SeasonMarker struct {
	BookNumber int    `json:"book_number"`
	Season     string `json:"season"`
	Year       int    `json:"year"`
}

// Timeline is the series-wide chronology.
type Timeline struct {
	Events              []TimelineEvent        `json:"events"`
	TimeGaps            []map[string]any       `json:"time_gaps"`
	CharacterAges       map[string]map[int]int `json:"character_ages"`
	SeasonalProgression []SeasonMarker         `json:"seasonal_progression"`
}

// NewTimeline returns an empty timeline with non-nil containers.
func NewTimeline() Timeline {
	return Timeline{
		Events:              []TimelineEvent{},
		TimeGaps:            []map[string]any{},
		CharacterAges:       map[string]map[int]int{},
		SeasonalProgression: []SeasonMarker{},
	}
}

// Clone returns a deep copy.
func (t *Timeline) Clone() Timeline {
	out := NewTimeline()
	for _, event := range t.Events {
		event.Details = maps.Clone(event.Details)
		out.Events = append(out.Events, event)
	}
	for _, gap := range t.TimeGaps {
		out.TimeGaps = append(out.TimeGaps, maps.Clone(gap))
	}
	for name, ages := range t.CharacterAges {
		out.CharacterAges[name] = maps.Clone(ages)
	}
	out.SeasonalProgression = append(out.SeasonalProgression, t.SeasonalProgression...)
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}

func cloneStringMap(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return maps.Clone(values)
}
