// Package ingest folds the structured output of one generated book into a
// series' continuity store.
package ingest

import (
	"fmt"
	"maps"
	"slices"

	"serieskeeper/internal/continuity"
	"serieskeeper/internal/logging"
)

// Defaults for characters that arrive without status or location.
const (
	DefaultCharacterStatus   = continuity.StatusAlive
	DefaultCharacterLocation = "Unknown"
)

// Saver persists the store after ingestion.
type Saver interface {
	Save(store *continuity.Store) error
}

type Result struct {
	CharactersUpdated int
	PlotThreadsAdded  int
	EventsAdded       int
	Errors            []error
	// SaveErr is the persistence failure, if any. It does not fail the ingestion.
	SaveErr error
}

// UpdateContinuityFromBook applies bookData for bookNumber to store and
// saves it through saver. Individual bad records are logged, recorded in
// Result.Errors and skipped; nothing here aborts the book.
//
// Recognized keys: characters (list, or map keyed by name), outline.subplots
// and title.
func UpdateContinuityFromBook(store *continuity.Store, saver Saver, bookData map[string]any, bookNumber int) *Result {
	result := &Result{}
	logger := logging.NewComponentLogger(store.Logger(), "ingest")

	fail := func(msg, eventType string, err error, attrs ...logging.Attr) {
		result.Errors = append(result.Errors, err)
		attrs = append(attrs, logging.Int(logging.FieldBook, bookNumber), logging.Error(err))
		logging.Warn(logger, msg, eventType, attrs...)
	}

	for _, record := range characterRecords(bookData["characters"]) {
		name := toString(record["name"])
		if name == "" {
			continue
		}
		fieldErrs, err := applyCharacter(store, record, name, bookNumber)
		if err != nil {
			fail("skipping character", "character_ingest_failed", err,
				logging.String(logging.FieldEntityKey, name))
			continue
		}
		for _, fieldErr := range fieldErrs {
			fail("skipping character field", "character_field_ingest_failed", fieldErr,
				logging.String(logging.FieldEntityKey, name))
		}
		result.CharactersUpdated++
	}

	outline, _ := bookData["outline"].(map[string]any)
	subplots, _ := outline["subplots"].([]any)
	for i, raw := range subplots {
		id := fmt.Sprintf("book_%d_subplot_%d", bookNumber, i)
		if err := applySubplot(store, raw, id, i, bookNumber); err != nil {
			fail("skipping subplot", "subplot_ingest_failed", err,
				logging.String(logging.FieldEntityKey, id))
			continue
		}
		result.PlotThreadsAdded++
	}

	if title := toString(bookData["title"]); title != "" && !store.HasTimelineEvent(bookNumber, title) {
		details := map[string]any{}
		if summary := firstString(bookData, "summary", "synopsis"); summary != "" {
			details["summary"] = summary
		}
		if err := store.AddTimelineEvent(bookNumber, title, details); err != nil {
			fail("skipping timeline event", "timeline_ingest_failed", err)
		} else {
			result.EventsAdded++
		}
	}

	if saver != nil {
		if err := saver.Save(store); err != nil {
			result.SaveErr = err
			logging.Warn(logger, "continuity save failed after ingestion", "ingest_save_failed",
				logging.Int(logging.FieldBook, bookNumber),
				logging.Error(err),
				logging.String(logging.FieldImpact, "book updates exist only in memory until the next successful save"),
			)
		}
	}

	logger.Info("book ingested",
		logging.String(logging.FieldEventType, "book_ingested"),
		logging.Int(logging.FieldBook, bookNumber),
		logging.Int("characters", result.CharactersUpdated),
		logging.Int("plot_threads", result.PlotThreadsAdded),
		logging.Int("errors", len(result.Errors)),
	)
	return result
}

// characterRecords accepts a list of character records or a map keyed by
// character name.
func characterRecords(raw any) []map[string]any {
	var out []map[string]any
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if record, ok := item.(map[string]any); ok {
				out = append(out, record)
			}
		}
	case []map[string]any:
		out = append(out, v...)
	case map[string]any:
		for _, name := range slices.Sorted(maps.Keys(v)) {
			record, ok := v[name].(map[string]any)
			if !ok {
				continue
			}
			record = maps.Clone(record)
			if toString(record["name"]) == "" {
				record["name"] = name
			}
			out = append(out, record)
		}
	}
	return out
}

// applyCharacter upserts the character and applies its optional fields.
// Only a failed upsert is returned as err; a bad optional field is reported
// in fieldErrs and the remaining fields are still applied.
func applyCharacter(store *continuity.Store, record map[string]any, name string, book int) (fieldErrs []error, err error) {
	status := firstString(record, "status", "current_status")
	if status == "" {
		status = DefaultCharacterStatus
	}
	location := firstString(record, "location")
	if location == "" {
		location = DefaultCharacterLocation
	}
	if _, err := store.AddCharacter(name, status, location, continuity.InBook(book)); err != nil {
		return nil, err
	}

	check := func(field string, err error) {
		if err != nil {
			fieldErrs = append(fieldErrs, fmt.Errorf("%s %s: %w", name, field, err))
		}
	}

	if rels := NormalizeRelationshipField(record["relationships"], book); len(rels) > 0 {
		check("relationships", store.MergeRelationships(name, rels))
	}
	if abilities := NormalizeAbilities(record["abilities"]); len(abilities) > 0 {
		check("abilities", store.AddAbilities(name, abilities...))
	}
	if knowledge := NormalizeAbilities(record["knowledge"]); len(knowledge) > 0 {
		check("knowledge", store.AddKnowledge(name, knowledge...))
	}
	for _, note := range NormalizeAbilities(firstValue(record, "personality", "personality_changes")) {
		check("personality", store.RecordPersonalityChange(name, book, note))
	}
	for _, note := range NormalizeAbilities(firstValue(record, "physical", "appearance", "physical_changes")) {
		check("physical", store.RecordPhysicalChange(name, book, note))
	}
	if stage := firstString(record, "arc_stage", "character_arc_stage"); stage != "" {
		check("arc_stage", store.SetArcStage(name, continuity.ArcStage(stage)))
	}
	if age, ok := continuity.AsInt(record["age"]); ok {
		check("age", store.SetCharacterAge(name, book, age))
	}
	return fieldErrs, nil
}

func applySubplot(store *continuity.Store, raw any, id string, index, book int) error {
	name := fmt.Sprintf("Subplot %d", index+1)
	var description string
	var characters []string

	switch v := raw.(type) {
	case string:
		description = v
	case map[string]any:
		if n := firstString(v, "name", "title"); n != "" {
			name = n
		}
		description = firstString(v, "description", "summary")
		characters = resolveFieldValue(v["characters"])
	default:
		return fmt.Errorf("subplot %d has unsupported shape %T", index, raw)
	}

	if _, err := store.AddPlotThread(id, name, description, continuity.ImportanceSubplot, continuity.InBook(book)); err != nil {
		return err
	}
	if len(characters) > 0 {
		if _, err := store.UpdatePlotThread(id, continuity.ThreadUpdate{ConnectCharacters: characters}); err != nil {
			return err
		}
	}
	return nil
}

func firstValue(record map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
