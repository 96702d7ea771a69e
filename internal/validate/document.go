package validate

import (
	"fmt"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
)

// Top-level keys of the persisted state document.
const (
	FieldSeriesTitle       = "series_title"
	FieldCurrentBookNumber = "current_book_number"
	FieldTotalBooksPlanned = "total_books_planned"
	FieldCharacters        = "characters"
	FieldPlotThreads       = "plot_threads"
	FieldWorldElements     = "world_elements"
	FieldTimeline          = "timeline"
)

// entityLists maps document list fields to their schema kind.
var entityLists = []struct {
	field string
	kind  string
}{
	{FieldCharacters, config.KindCharacter},
	{FieldPlotThreads, config.KindPlotThread},
	{FieldWorldElements, config.KindWorldElement},
}

// Document checks the shape of a whole state document. Entity lists and the
// timeline may be absent, but must have the right container type when
// present.
func Document(record map[string]any) *Report {
	report := &Report{}
	shape := func(field, message string) {
		report.add(Issue{
			Severity: SeverityError,
			Code:     codeWrongShape,
			Message:  message,
			Field:    field,
		})
	}

	if record == nil {
		shape("", "state document is empty")
		return report
	}

	title, present := record[FieldSeriesTitle]
	if !present {
		shape(FieldSeriesTitle, "missing series_title")
	} else if _, ok := title.(string); !ok {
		shape(FieldSeriesTitle, fmt.Sprintf("series_title must be a string, got %T", title))
	}

	for _, field := range []string{FieldCurrentBookNumber, FieldTotalBooksPlanned} {
		value, present := record[field]
		if !present {
			shape(field, "missing "+field)
			continue
		}
		n, ok := continuity.AsInt(value)
		if !ok {
			shape(field, fmt.Sprintf("%s must be an integer, got %T", field, value))
			continue
		}
		if n < 0 {
			shape(field, fmt.Sprintf("%s must be non-negative, got %d", field, n))
		}
	}

	for _, list := range entityLists {
		value, present := record[list.field]
		if present && value != nil && !isList(value) {
			shape(list.field, fmt.Sprintf("%s must be a list, got %T", list.field, value))
		}
	}

	if value, present := record[FieldTimeline]; present && value != nil && !isMap(value) {
		shape(FieldTimeline, fmt.Sprintf("timeline must be a mapping, got %T", value))
	}

	return report
}

// State runs Document and then Entity on every record of every entity list.
// Duplicate keys within a list are reported as warnings.
func State(schema *config.Schema, record map[string]any) *Report {
	report := Document(record)
	if report.HasErrors() {
		return report
	}

	for _, list := range entityLists {
		items, _ := record[list.field].([]any)
		keyField := ""
		if entityType, ok := schema.EntityTypeByName(list.kind); ok {
			keyField = entityType.Key
		}
		seen := make(map[string]struct{})
		for i, item := range items {
			entity, ok := item.(map[string]any)
			if !ok {
				report.add(Issue{
					Severity: SeverityError,
					Code:     codeWrongShape,
					Message:  fmt.Sprintf("%s[%d] must be a mapping, got %T", list.field, i, item),
					Kind:     list.kind,
					Field:    list.field,
				})
				continue
			}
			report.merge(Entity(schema, list.kind, entity))

			if keyField == "" {
				continue
			}
			key, _ := entity[keyField].(string)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				report.add(Issue{
					Severity: SeverityWarn,
					Code:     codeDuplicateKey,
					Message:  fmt.Sprintf("duplicate %s %q", keyField, key),
					Kind:     list.kind,
					Entity:   key,
					Field:    keyField,
				})
			}
			seen[key] = struct{}{}
		}
	}

	if timeline, ok := record[FieldTimeline].(map[string]any); ok {
		report.merge(Entity(schema, config.KindTimeline, timeline))
	}

	return report
}
