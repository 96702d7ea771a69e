package continuity

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "serieskeeper/internal/errors"
	"serieskeeper/internal/logging"
)

// DefaultWorldElementState is the current_state given to newly added world elements.
const DefaultWorldElementState = "established"

// Store is the in-memory continuity state of one series. It is not safe for
// concurrent use; callers serialize access per series.
type Store struct {
	seriesTitle       string
	currentBookNumber int
	totalBooksPlanned int
	lastUpdated       time.Time

	characters     map[string]*Character
	characterOrder []string
	threads        map[string]*PlotThread
	threadOrder    []string
	elements       map[string]*WorldElement
	elementOrder   []string
	timeline       Timeline

	logger     *slog.Logger
	baseLogger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for skipped-entity warnings.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.baseLogger = logger
		s.logger = logging.NewComponentLogger(logger, "continuity")
	}
}

// NewStore creates an empty store for a series.
func NewStore(seriesTitle string, totalBooks int, opts ...StoreOption) *Store {
	s := &Store{
		seriesTitle:       seriesTitle,
		totalBooksPlanned: totalBooks,
		characters:        map[string]*Character{},
		threads:           map[string]*PlotThread{},
		elements:          map[string]*WorldElement{},
		timeline:          NewTimeline(),
		logger:            logging.NewComponentLogger(nil, "continuity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SeriesTitle() string        { return s.seriesTitle }
func (s *Store) CurrentBookNumber() int     { return s.currentBookNumber }
func (s *Store) TotalBooksPlanned() int     { return s.totalBooksPlanned }
func (s *Store) LastUpdated() time.Time     { return s.lastUpdated }
func (s *Store) SetLastUpdated(t time.Time) { s.lastUpdated = t }

// Logger returns the logger the store was built with, without the
// continuity component attribute. It may be nil.
func (s *Store) Logger() *slog.Logger { return s.baseLogger }

// BookOption selects the book a mutation applies to. Without one, the
// store's current book number is used.
type BookOption func(*bookOptions)

type bookOptions struct {
	book int
}

// InBook pins a mutation to book n.
func InBook(n int) BookOption {
	return func(o *bookOptions) {
		o.book = n
	}
}

func (s *Store) resolveBook(opts []BookOption) (int, error) {
	o := bookOptions{book: s.currentBookNumber}
	for _, opt := range opts {
		opt(&o)
	}
	if o.book < 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", o.book))
	}
	return o.book, nil
}

func requireNonBlank(fields ...[2]string) error {
	for _, field := range fields {
		if strings.TrimSpace(field[1]) == "" {
			return apperrors.InvalidInput(field[0] + " is required")
		}
	}
	return nil
}

// AddCharacter inserts a character, or updates status, location and
// last_appearance_book of an existing one.
func (s *Store) AddCharacter(name, status, location string, opts ...BookOption) (Character, error) {
	if err := requireNonBlank([2]string{"character name", name}, [2]string{"character status", status}, [2]string{"character location", location}); err != nil {
		return Character{}, err
	}
	book, err := s.resolveBook(opts)
	if err != nil {
		return Character{}, err
	}

	if existing, ok := s.characters[name]; ok {
		existing.CurrentStatus = status
		existing.Location = location
		existing.LastAppearanceBook = book
		return existing.Clone(), nil
	}

	c := &Character{
		Name:               name,
		LastAppearanceBook: book,
		CurrentStatus:      status,
		Location:           location,
		Relationships:      map[string]string{},
		Abilities:          []string{},
		Knowledge:          []string{},
		ArcStage:           ArcBeginning,
		PersonalityChanges: []string{},
		PhysicalChanges:    []string{},
	}
	s.characters[name] = c
	s.characterOrder = append(s.characterOrder, name)
	return c.Clone(), nil
}

// AddPlotThread inserts a new active plot thread. An existing thread ID is
// returned unchanged.
func (s *Store) AddPlotThread(id, name, description string, importance Importance, opts ...BookOption) (PlotThread, error) {
	if err := requireNonBlank([2]string{"thread id", id}, [2]string{"thread name", name}, [2]string{"thread description", description}); err != nil {
		return PlotThread{}, err
	}
	if !ValidImportances[importance] {
		return PlotThread{}, apperrors.InvalidInput(fmt.Sprintf("importance %q is not one of major, minor, subplot", importance))
	}
	book, err := s.resolveBook(opts)
	if err != nil {
		return PlotThread{}, err
	}

	if existing, ok := s.threads[id]; ok {
		return existing.Clone(), nil
	}

	p := &PlotThread{
		ThreadID:            id,
		Name:                name,
		Description:         description,
		Status:              ThreadActive,
		IntroducedBook:      book,
		LastMentionedBook:   book,
		KeyEvents:           []BookEvent{},
		ConnectedCharacters: []string{},
		ImportanceLevel:     importance,
	}
	s.threads[id] = p
	s.threadOrder = append(s.threadOrder, id)
	return p.Clone(), nil
}

// AddWorldElement inserts a new world element. An existing element ID is
// returned unchanged.
func (s *Store) AddWorldElement(id, name, elementType, description string, opts ...BookOption) (WorldElement, error) {
	if err := requireNonBlank([2]string{"element id", id}, [2]string{"element name", name}, [2]string{"element type", elementType}, [2]string{"element description", description}); err != nil {
		return WorldElement{}, err
	}
	book, err := s.resolveBook(opts)
	if err != nil {
		return WorldElement{}, err
	}

	if existing, ok := s.elements[id]; ok {
		return existing.Clone(), nil
	}

	w := &WorldElement{
		ElementID:            id,
		Name:                 name,
		Type:                 elementType,
		Description:          description,
		FirstIntroducedBook:  book,
		LastMentionedBook:    book,
		CurrentState:         DefaultWorldElementState,
		RulesAndProperties:   map[string]any{},
		ChangesOverTime:      []BookEvent{},
		ConnectedCharacters:  []string{},
		ConnectedPlotThreads: []string{},
	}
	s.elements[id] = w
	s.elementOrder = append(s.elementOrder, id)
	return w.Clone(), nil
}

// StartNewBook advances the store to book n and carries present characters,
// active threads and all world elements forward to at least book n-1.
// Calling it twice with the same n changes nothing the second time.
func (s *Store) StartNewBook(n int) error {
	if n < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", n))
	}
	if n < s.currentBookNumber {
		return apperrors.InvalidInput(fmt.Sprintf("book number %d is before current book %d", n, s.currentBookNumber))
	}
	s.currentBookNumber = n
	previous := n - 1

	for _, name := range s.characterOrder {
		c := s.characters[name]
		if IsPresentStatus(c.CurrentStatus) {
			c.LastAppearanceBook = max(c.LastAppearanceBook, previous)
		}
	}
	for _, id := range s.threadOrder {
		p := s.threads[id]
		if p.Status == ThreadActive {
			p.LastMentionedBook = max(p.LastMentionedBook, previous)
		}
	}
	for _, id := range s.elementOrder {
		w := s.elements[id]
		w.LastMentionedBook = max(w.LastMentionedBook, previous)
	}
	return nil
}

// Character returns a copy of the named character.
func (s *Store) Character(name string) (Character, bool) {
	c, ok := s.characters[name]
	if !ok {
		return Character{}, false
	}
	return c.Clone(), true
}

// PlotThread returns a copy of the thread with the given ID.
func (s *Store) PlotThread(id string) (PlotThread, bool) {
	p, ok := s.threads[id]
	if !ok {
		return PlotThread{}, false
	}
	return p.Clone(), true
}

// WorldElement returns a copy of the element with the given ID.
func (s *Store) WorldElement(id string) (WorldElement, bool) {
	w, ok := s.elements[id]
	if !ok {
		return WorldElement{}, false
	}
	return w.Clone(), true
}

// Characters returns copies of all characters in insertion order.
func (s *Store) Characters() []Character {
	out := make([]Character, 0, len(s.characterOrder))
	for _, name := range s.characterOrder {
		out = append(out, s.characters[name].Clone())
	}
	return out
}

// PlotThreads returns copies of all plot threads in insertion order.
func (s *Store) PlotThreads() []PlotThread {
	out := make([]PlotThread, 0, len(s.threadOrder))
	for _, id := range s.threadOrder {
		out = append(out, s.threads[id].Clone())
	}
	return out
}

// WorldElements returns copies of all world elements in insertion order.
func (s *Store) WorldElements() []WorldElement {
	out := make([]WorldElement, 0, len(s.elementOrder))
	for _, id := range s.elementOrder {
		out = append(out, s.elements[id].Clone())
	}
	return out
}

// Timeline returns a copy of the series timeline.
func (s *Store) Timeline() Timeline {
	return s.timeline.Clone()
}

// Counts returns the number of characters, plot threads and world elements.
func (s *Store) Counts() (characters, threads, elements int) {
	return len(s.characterOrder), len(s.threadOrder), len(s.elementOrder)
}
