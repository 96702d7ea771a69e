package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
	"serieskeeper/internal/logging"
	"serieskeeper/internal/validate"
)

// SchemaVersion is written into every state file.
const SchemaVersion = 1

type stateDocument struct {
	SchemaVersion     int                       `json:"schema_version"`
	SeriesTitle       string                    `json:"series_title"`
	CurrentBookNumber int                       `json:"current_book_number"`
	TotalBooksPlanned int                       `json:"total_books_planned"`
	LastUpdated       string                    `json:"last_updated"`
	Characters        []continuity.Character    `json:"characters"`
	PlotThreads       []continuity.PlotThread   `json:"plot_threads"`
	WorldElements     []continuity.WorldElement `json:"world_elements"`
	Timeline          continuity.Timeline       `json:"timeline"`
}

func encodeState(snap continuity.Snapshot, updated time.Time) ([]byte, error) {
	doc := stateDocument{
		SchemaVersion:     SchemaVersion,
		SeriesTitle:       snap.SeriesTitle,
		CurrentBookNumber: snap.CurrentBookNumber,
		TotalBooksPlanned: snap.TotalBooksPlanned,
		LastUpdated:       updated.UTC().Format(time.RFC3339),
		Characters:        snap.Characters,
		PlotThreads:       snap.PlotThreads,
		WorldElements:     snap.WorldElements,
		Timeline:          snap.Timeline,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (map[string]any, error) {
	record, err := continuity.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return record, nil
}

// checkEncoded re-reads encoded state as a generic record and runs the
// document and per-entity validators over it.
func checkEncoded(schema *config.Schema, data []byte) error {
	record, err := decodeRecord(data)
	if err != nil {
		return err
	}
	return validate.State(schema, record).Err()
}

// buildStore turns a document-valid record into a store. Entities that fail
// their safe constructor are logged and counted, not fatal.
func (m *Manager) buildStore(record map[string]any) (*continuity.Store, int) {
	skipped := 0
	snap := continuity.Snapshot{
		SeriesTitle: optionalString(record[validate.FieldSeriesTitle]),
	}
	snap.CurrentBookNumber, _ = continuity.AsInt(record[validate.FieldCurrentBookNumber])
	snap.TotalBooksPlanned, _ = continuity.AsInt(record[validate.FieldTotalBooksPlanned])
	if ts, err := time.Parse(time.RFC3339, optionalString(record["last_updated"])); err == nil {
		snap.LastUpdated = ts
	}

	for i, item := range listOf(record[validate.FieldCharacters]) {
		c, err := validate.SafeCharacter(m.schema, recordOf(item))
		if err != nil {
			m.skipEntity(config.KindCharacter, i, err)
			skipped++
			continue
		}
		snap.Characters = append(snap.Characters, c)
	}
	for i, item := range listOf(record[validate.FieldPlotThreads]) {
		p, err := validate.SafePlotThread(m.schema, recordOf(item))
		if err != nil {
			m.skipEntity(config.KindPlotThread, i, err)
			skipped++
			continue
		}
		snap.PlotThreads = append(snap.PlotThreads, p)
	}
	for i, item := range listOf(record[validate.FieldWorldElements]) {
		w, err := validate.SafeWorldElement(m.schema, recordOf(item))
		if err != nil {
			m.skipEntity(config.KindWorldElement, i, err)
			skipped++
			continue
		}
		snap.WorldElements = append(snap.WorldElements, w)
	}

	timeline, dropped := validate.SafeTimeline(m.schema, continuity.AsMap(record[validate.FieldTimeline]))
	if dropped > 0 {
		logging.Warn(m.logger, "dropped malformed timeline entries", "timeline_entries_dropped",
			logging.Int("count", dropped),
			logging.String(logging.FieldImpact, "timeline entries missing from loaded state"),
		)
	}
	snap.Timeline = timeline
	skipped += dropped

	return continuity.FromSnapshot(snap, continuity.WithLogger(m.baseLogger)), skipped
}

func (m *Manager) skipEntity(kind string, index int, err error) {
	logging.Warn(m.logger, "skipping invalid entity while loading", "entity_skipped",
		logging.String(logging.FieldEntityKind, kind),
		logging.Int("index", index),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the record in the state file"),
		logging.String(logging.FieldImpact, "entity is not part of the loaded series"),
	)
}

func listOf(v any) []any {
	list, _ := v.([]any)
	return list
}

// recordOf returns the entry as a mapping; non-mapping entries become an
// empty record so the safe constructor reports them.
func recordOf(v any) map[string]any {
	record, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return record
}

func optionalString(v any) string {
	s, _ := v.(string)
	return s
}
