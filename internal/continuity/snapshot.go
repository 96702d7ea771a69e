package continuity

import (
	"time"

	"serieskeeper/internal/logging"
)

// Snapshot is a detached copy of a store's full state.
type Snapshot struct {
	SeriesTitle       string
	CurrentBookNumber int
	TotalBooksPlanned int
	LastUpdated       time.Time
	Characters        []Character
	PlotThreads       []PlotThread
	WorldElements     []WorldElement
	Timeline          Timeline
}

// Snapshot returns a deep copy of the store's state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		SeriesTitle:       s.seriesTitle,
		CurrentBookNumber: s.currentBookNumber,
		TotalBooksPlanned: s.totalBooksPlanned,
		LastUpdated:       s.lastUpdated,
		Characters:        s.Characters(),
		PlotThreads:       s.PlotThreads(),
		WorldElements:     s.WorldElements(),
		Timeline:          s.Timeline(),
	}
}

// FromSnapshot builds a store from snap. Entities whose key was already
// seen are logged and skipped; the first occurrence wins.
func FromSnapshot(snap Snapshot, opts ...StoreOption) *Store {
	s := NewStore(snap.SeriesTitle, snap.TotalBooksPlanned, opts...)
	s.currentBookNumber = max(snap.CurrentBookNumber, 0)
	s.lastUpdated = snap.LastUpdated

	for i := range snap.Characters {
		c := snap.Characters[i].Clone()
		if _, dup := s.characters[c.Name]; dup {
			s.skipDuplicate("character", c.Name)
			continue
		}
		s.characters[c.Name] = &c
		s.characterOrder = append(s.characterOrder, c.Name)
	}
	for i := range snap.PlotThreads {
		p := snap.PlotThreads[i].Clone()
		if _, dup := s.threads[p.ThreadID]; dup {
			s.skipDuplicate("plot_thread", p.ThreadID)
			continue
		}
		s.threads[p.ThreadID] = &p
		s.threadOrder = append(s.threadOrder, p.ThreadID)
	}
	for i := range snap.WorldElements {
		w := snap.WorldElements[i].Clone()
		if _, dup := s.elements[w.ElementID]; dup {
			s.skipDuplicate("world_element", w.ElementID)
			continue
		}
		s.elements[w.ElementID] = &w
		s.elementOrder = append(s.elementOrder, w.ElementID)
	}
	s.timeline = snap.Timeline.Clone()
	return s
}

func (s *Store) skipDuplicate(kind, key string) {
	logging.Warn(s.logger, "skipping duplicate entity key", "duplicate_entity_skipped",
		logging.String(logging.FieldEntityKind, kind),
		logging.String(logging.FieldEntityKey, key),
		logging.String(logging.FieldImpact, "later record with the same key was ignored"),
	)
}
