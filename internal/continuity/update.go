package continuity

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	apperrors "serieskeeper/internal/errors"
)

func (s *Store) character(name string) (*Character, error) {
	c, ok := s.characters[name]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("character %q not found", name))
	}
	return c, nil
}

func (s *Store) thread(id string) (*PlotThread, error) {
	p, ok := s.threads[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("plot thread %q not found", id))
	}
	return p, nil
}

func (s *Store) element(id string) (*WorldElement, error) {
	w, ok := s.elements[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("world element %q not found", id))
	}
	return w, nil
}

// MergeRelationships copies relationships into the character's map,
// overwriting descriptors for keys already present.
func (s *Store) MergeRelationships(name string, relationships map[string]string) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	if c.Relationships == nil {
		c.Relationships = map[string]string{}
	}
	maps.Copy(c.Relationships, relationships)
	return nil
}

// AddAbilities appends abilities. Duplicates are kept.
func (s *Store) AddAbilities(name string, abilities ...string) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	c.Abilities = append(c.Abilities, abilities...)
	return nil
}

// AddKnowledge appends knowledge items.
func (s *Store) AddKnowledge(name string, items ...string) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	c.Knowledge = append(c.Knowledge, items...)
	return nil
}

// BookNote formats an append-only change note.
func BookNote(book int, note string) string {
	return fmt.Sprintf("Book %d: %s", book, note)
}

// RecordPersonalityChange appends a "Book N: note" personality change.
func (s *Store) RecordPersonalityChange(name string, book int, note string) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	if book < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", book))
	}
	if strings.TrimSpace(note) == "" {
		return apperrors.InvalidInput("personality change note is required")
	}
	c.PersonalityChanges = append(c.PersonalityChanges, BookNote(book, note))
	return nil
}

// RecordPhysicalChange appends a "Book N: note" physical change.
func (s *Store) RecordPhysicalChange(name string, book int, note string) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	if book < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", book))
	}
	if strings.TrimSpace(note) == "" {
		return apperrors.InvalidInput("physical change note is required")
	}
	c.PhysicalChanges = append(c.PhysicalChanges, BookNote(book, note))
	return nil
}

// SetArcStage sets the character's arc stage. Unconventional stages are accepted.
func (s *Store) SetArcStage(name string, stage ArcStage) error {
	c, err := s.character(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(stage)) == "" {
		return apperrors.InvalidInput("arc stage is required")
	}
	c.ArcStage = stage
	return nil
}

// ThreadUpdate describes changes to a plot thread. Zero-valued fields are
// left alone.
type ThreadUpdate struct {
	Status             ThreadStatus
	KeyEvent           *BookEvent
	ConnectCharacters  []string
	ResolutionBook     *int
	LastMentionedBook  *int
	ImportanceLevel    Importance
	ReplaceDescription string
}

// UpdatePlotThread applies u to the thread with the given ID.
func (s *Store) UpdatePlotThread(id string, u ThreadUpdate) (PlotThread, error) {
	p, err := s.thread(id)
	if err != nil {
		return PlotThread{}, err
	}
	if u.Status != "" && !ValidThreadStatuses[u.Status] {
		return PlotThread{}, apperrors.InvalidInput(fmt.Sprintf("thread status %q is not valid", u.Status))
	}
	if u.ImportanceLevel != "" && !ValidImportances[u.ImportanceLevel] {
		return PlotThread{}, apperrors.InvalidInput(fmt.Sprintf("importance %q is not valid", u.ImportanceLevel))
	}
	for _, book := range []*int{u.ResolutionBook, u.LastMentionedBook} {
		if book != nil && *book < 0 {
			return PlotThread{}, apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", *book))
		}
	}
	if u.KeyEvent != nil && u.KeyEvent.BookNumber < 0 {
		return PlotThread{}, apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", u.KeyEvent.BookNumber))
	}

	if u.Status != "" {
		p.Status = u.Status
	}
	if u.ImportanceLevel != "" {
		p.ImportanceLevel = u.ImportanceLevel
	}
	if u.ReplaceDescription != "" {
		p.Description = u.ReplaceDescription
	}
	if u.KeyEvent != nil {
		p.KeyEvents = append(p.KeyEvents, *u.KeyEvent)
		p.LastMentionedBook = max(p.LastMentionedBook, u.KeyEvent.BookNumber)
	}
	p.ConnectedCharacters = appendUnique(p.ConnectedCharacters, u.ConnectCharacters...)
	if u.ResolutionBook != nil {
		book := *u.ResolutionBook
		p.ResolutionBook = &book
		if u.Status == "" {
			p.Status = ThreadResolved
		}
	}
	if u.LastMentionedBook != nil {
		p.LastMentionedBook = max(p.LastMentionedBook, *u.LastMentionedBook)
	}
	return p.Clone(), nil
}

// ElementUpdate describes changes to a world element. Zero-valued fields are
// left alone.
type ElementUpdate struct {
	CurrentState       string
	Rules              map[string]any
	Change             *BookEvent
	ConnectCharacters  []string
	ConnectPlotThreads []string
}

// UpdateWorldElement applies u to the element with the given ID.
func (s *Store) UpdateWorldElement(id string, u ElementUpdate) (WorldElement, error) {
	w, err := s.element(id)
	if err != nil {
		return WorldElement{}, err
	}
	if u.Change != nil && u.Change.BookNumber < 0 {
		return WorldElement{}, apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", u.Change.BookNumber))
	}

	if u.CurrentState != "" {
		w.CurrentState = u.CurrentState
	}
	if len(u.Rules) > 0 {
		if w.RulesAndProperties == nil {
			w.RulesAndProperties = map[string]any{}
		}
		for k, v := range u.Rules {
			w.RulesAndProperties[k] = NormalizeValue(v)
		}
	}
	if u.Change != nil {
		w.ChangesOverTime = append(w.ChangesOverTime, *u.Change)
		w.LastMentionedBook = max(w.LastMentionedBook, u.Change.BookNumber)
	}
	w.ConnectedCharacters = appendUnique(w.ConnectedCharacters, u.ConnectCharacters...)
	w.ConnectedPlotThreads = appendUnique(w.ConnectedPlotThreads, u.ConnectPlotThreads...)
	return w.Clone(), nil
}

// AddTimelineEvent appends an event. Extra fields go to details.
func (s *Store) AddTimelineEvent(book int, title string, details map[string]any) error {
	if book < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", book))
	}
	if strings.TrimSpace(title) == "" {
		return apperrors.InvalidInput("timeline event title is required")
	}
	s.timeline.Events = append(s.timeline.Events, TimelineEvent{
		BookNumber: book,
		Title:      title,
		Details:    NormalizeRecord(details),
	})
	return nil
}

// HasTimelineEvent reports whether an event with this book and title exists.
func (s *Store) HasTimelineEvent(book int, title string) bool {
	for _, event := range s.timeline.Events {
		if event.BookNumber == book && event.Title == title {
			return true
		}
	}
	return false
}

// AddTimeGap appends a free-form time gap record.
func (s *Store) AddTimeGap(gap map[string]any) error {
	if len(gap) == 0 {
		return apperrors.InvalidInput("time gap is empty")
	}
	s.timeline.TimeGaps = append(s.timeline.TimeGaps, NormalizeRecord(gap))
	return nil
}

// SetCharacterAge records a character's age in a book.
func (s *Store) SetCharacterAge(name string, book, age int) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.InvalidInput("character name is required")
	}
	if book < 0 || age < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book %d and age %d must be non-negative", book, age))
	}
	ages, ok := s.timeline.CharacterAges[name]
	if !ok {
		ages = map[int]int{}
		s.timeline.CharacterAges[name] = ages
	}
	ages[book] = age
	return nil
}

// AddSeason appends a seasonal progression marker.
func (s *Store) AddSeason(book int, season string, year int) error {
	if book < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", book))
	}
	if strings.TrimSpace(season) == "" {
		return apperrors.InvalidInput("season is required")
	}
	s.timeline.SeasonalProgression = append(s.timeline.SeasonalProgression, SeasonMarker{
		BookNumber: book,
		Season:     season,
		Year:       year,
	})
	return nil
}

func appendUnique(values []string, more ...string) []string {
	for _, v := range more {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(values, v) {
			continue
		}
		values = append(values, v)
	}
	return values
}
