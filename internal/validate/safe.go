package validate

import (
	"maps"
	"strings"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
)

// withDefaults merges the schema's default table under record and coerces
// declared list and mapping fields to the right container type.
func withDefaults(schema *config.Schema, kind string, record map[string]any) map[string]any {
	merged := schema.Defaults(kind)
	maps.Copy(merged, record)

	entityType, ok := schema.EntityTypeByName(kind)
	if !ok {
		return merged
	}
	for _, prop := range entityType.Properties {
		value, present := merged[prop.Name]
		if !present {
			continue
		}
		switch strings.ToLower(prop.Type) {
		case config.TypeList:
			merged[prop.Name] = coerceList(value)
		case config.TypeMap:
			merged[prop.Name] = coerceMap(value)
		}
	}
	return merged
}

func coerceList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, 0, len(list))
		for _, s := range list {
			out = append(out, s)
		}
		return out
	case []map[string]any:
		out := make([]any, 0, len(list))
		for _, m := range list {
			out = append(out, m)
		}
		return out
	}
	return []any{}
}

func coerceMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	}
	return map[string]any{}
}

// SafeCharacter defaults, coerces and validates record, then builds a
// character. A record that is still invalid yields a ValidationFailure.
func SafeCharacter(schema *config.Schema, record map[string]any) (continuity.Character, error) {
	merged := withDefaults(schema, config.KindCharacter, record)
	if err := Entity(schema, config.KindCharacter, merged).Err(); err != nil {
		return continuity.Character{}, err
	}
	return continuity.CharacterFromRecord(merged)
}

// SafePlotThread is SafeCharacter for plot threads. A thread without
// last_mentioned_book takes its introduced_book.
func SafePlotThread(schema *config.Schema, record map[string]any) (continuity.PlotThread, error) {
	merged := withDefaults(schema, config.KindPlotThread, record)
	if _, ok := merged["last_mentioned_book"]; !ok {
		if introduced, ok := merged["introduced_book"]; ok {
			merged["last_mentioned_book"] = introduced
		}
	}
	if err := Entity(schema, config.KindPlotThread, merged).Err(); err != nil {
		return continuity.PlotThread{}, err
	}
	return continuity.PlotThreadFromRecord(merged)
}

// SafeWorldElement is SafeCharacter for world elements.
func SafeWorldElement(schema *config.Schema, record map[string]any) (continuity.WorldElement, error) {
	merged := withDefaults(schema, config.KindWorldElement, record)
	if _, ok := merged["last_mentioned_book"]; !ok {
		if introduced, ok := merged["first_introduced_book"]; ok {
			merged["last_mentioned_book"] = introduced
		}
	}
	if err := Entity(schema, config.KindWorldElement, merged).Err(); err != nil {
		return continuity.WorldElement{}, err
	}
	return continuity.WorldElementFromRecord(merged)
}

// SafeTimeline always yields a timeline; malformed entries are dropped and
// counted.
func SafeTimeline(schema *config.Schema, record map[string]any) (continuity.Timeline, int) {
	merged := withDefaults(schema, config.KindTimeline, record)
	return continuity.TimelineFromRecord(merged)
}
