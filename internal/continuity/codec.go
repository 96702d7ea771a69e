package continuity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	apperrors "serieskeeper/internal/errors"
)

// AsInt coerces a decoded JSON or YAML number to int. Floats must be integral.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// NormalizeValue returns a deep copy of a free-form value with numbers in the
// form they take after a JSON round trip: integral numbers become int, other
// numbers float64. Nested mappings and lists are copied.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return NormalizeRecord(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = NormalizeValue(item)
		}
		return out
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return NormalizeValue(f)
	case float32:
		return NormalizeValue(float64(x))
	case float64:
		if math.Abs(x) <= maxExactFloatInt {
			if n, ok := AsInt(x); ok {
				return n
			}
		}
		return x
	case int32, int64, uint64:
		if n, ok := AsInt(x); ok {
			return n
		}
		return v
	default:
		return v
	}
}

// maxExactFloatInt is the largest integer a float64 holds exactly.
const maxExactFloatInt = 1 << 53

// NormalizeRecord applies NormalizeValue to every entry of m. A nil map
// stays nil.
func NormalizeRecord(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = NormalizeValue(v)
	}
	return out
}

// DecodeRecord decodes a JSON object with integral numbers as int.
func DecodeRecord(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return NormalizeRecord(record), nil
}

// AsString returns v when it is a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice keeps the string elements of a list value. A nil or
// non-list value yields an empty slice.
func AsStringSlice(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// AsStringMap keeps the entries of a mapping value, formatting non-string
// values with %v. A nil or non-mapping value yields an empty map.
func AsStringMap(v any) map[string]string {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		maps.Copy(out, m)
	case map[string]any:
		for k, val := range m {
			if s, ok := val.(string); ok {
				out[k] = s
			} else if val != nil {
				out[k] = fmt.Sprint(val)
			}
		}
	}
	return out
}

// AsMap returns v when it is a string-keyed mapping, otherwise an empty map.
func AsMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	}
	return map[string]any{}
}

func missingField(kind, field string) error {
	return apperrors.New(apperrors.CodeValidationFailure, fmt.Sprintf("%s record is missing %s", kind, field))
}

func requiredString(record map[string]any, kind, field string) (string, error) {
	s, ok := AsString(record[field])
	if !ok || strings.TrimSpace(s) == "" {
		return "", missingField(kind, field)
	}
	return s, nil
}

func requiredInt(record map[string]any, kind, field string) (int, error) {
	n, ok := AsInt(record[field])
	if !ok {
		return 0, missingField(kind, field)
	}
	return n, nil
}

func optionalString(record map[string]any, field string) string {
	s, _ := AsString(record[field])
	return s
}

func bookEvents(v any) []BookEvent {
	out := []BookEvent{}
	list, _ := v.([]any)
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		book, ok := AsInt(m["book_number"])
		if !ok {
			continue
		}
		out = append(out, BookEvent{BookNumber: book, Description: optionalString(m, "description")})
	}
	return out
}

// CharacterFromRecord builds a character from a decoded record. The record
// is expected to have been defaulted already; missing mandatory fields are
// a ValidationFailure.
func CharacterFromRecord(record map[string]any) (Character, error) {
	name, err := requiredString(record, "character", "name")
	if err != nil {
		return Character{}, err
	}
	status, err := requiredString(record, "character", "current_status")
	if err != nil {
		return Character{}, err
	}
	location, err := requiredString(record, "character", "location")
	if err != nil {
		return Character{}, err
	}
	book, _ := AsInt(record["last_appearance_book"])

	c := Character{
		Name:               name,
		LastAppearanceBook: book,
		CurrentStatus:      status,
		Location:           location,
		Relationships:      AsStringMap(record["relationships"]),
		Abilities:          AsStringSlice(record["abilities"]),
		Knowledge:          AsStringSlice(record["knowledge"]),
		ArcStage:           ArcStage(optionalString(record, "character_arc_stage")),
		PersonalityChanges: AsStringSlice(record["personality_changes"]),
		PhysicalChanges:    AsStringSlice(record["physical_changes"]),
	}
	if c.ArcStage == "" {
		c.ArcStage = ArcBeginning
	}
	return c, c.Validate()
}

// PlotThreadFromRecord builds a plot thread from a decoded record.
func PlotThreadFromRecord(record map[string]any) (PlotThread, error) {
	id, err := requiredString(record, "plot thread", "thread_id")
	if err != nil {
		return PlotThread{}, err
	}
	name, err := requiredString(record, "plot thread", "name")
	if err != nil {
		return PlotThread{}, err
	}
	description, err := requiredString(record, "plot thread", "description")
	if err != nil {
		return PlotThread{}, err
	}
	status, err := requiredString(record, "plot thread", "status")
	if err != nil {
		return PlotThread{}, err
	}
	introduced, err := requiredInt(record, "plot thread", "introduced_book")
	if err != nil {
		return PlotThread{}, err
	}
	lastMentioned, ok := AsInt(record["last_mentioned_book"])
	if !ok {
		lastMentioned = introduced
	}

	p := PlotThread{
		ThreadID:            id,
		Name:                name,
		Description:         description,
		Status:              ThreadStatus(status),
		IntroducedBook:      introduced,
		LastMentionedBook:   lastMentioned,
		KeyEvents:           bookEvents(record["key_events"]),
		ConnectedCharacters: AsStringSlice(record["connected_characters"]),
		ImportanceLevel:     Importance(optionalString(record, "importance_level")),
	}
	if p.ImportanceLevel == "" {
		p.ImportanceLevel = ImportanceMinor
	}
	if resolution, ok := AsInt(record["resolution_book"]); ok {
		p.ResolutionBook = &resolution
	}
	return p, p.Validate()
}

// WorldElementFromRecord builds a world element from a decoded record.
func WorldElementFromRecord(record map[string]any) (WorldElement, error) {
	id, err := requiredString(record, "world element", "element_id")
	if err != nil {
		return WorldElement{}, err
	}
	name, err := requiredString(record, "world element", "name")
	if err != nil {
		return WorldElement{}, err
	}
	elementType, err := requiredString(record, "world element", "type")
	if err != nil {
		return WorldElement{}, err
	}
	description, err := requiredString(record, "world element", "description")
	if err != nil {
		return WorldElement{}, err
	}
	introduced, err := requiredInt(record, "world element", "first_introduced_book")
	if err != nil {
		return WorldElement{}, err
	}
	lastMentioned, ok := AsInt(record["last_mentioned_book"])
	if !ok {
		lastMentioned = introduced
	}

	w := WorldElement{
		ElementID:            id,
		Name:                 name,
		Type:                 elementType,
		Description:          description,
		FirstIntroducedBook:  introduced,
		LastMentionedBook:    lastMentioned,
		CurrentState:         optionalString(record, "current_state"),
		RulesAndProperties:   NormalizeRecord(AsMap(record["rules_and_properties"])),
		ChangesOverTime:      bookEvents(record["changes_over_time"]),
		ConnectedCharacters:  AsStringSlice(record["connected_characters"]),
		ConnectedPlotThreads: AsStringSlice(record["connected_plot_threads"]),
	}
	if w.CurrentState == "" {
		w.CurrentState = DefaultWorldElementState
	}
	return w, w.Validate()
}

// TimelineEventFromRecord builds an event; fields other than book_number
// and title are kept as details.
func TimelineEventFromRecord(record map[string]any) (TimelineEvent, error) {
	book, ok := AsInt(record["book_number"])
	if !ok || book < 0 {
		return TimelineEvent{}, missingField("timeline event", "book_number")
	}
	event := TimelineEvent{BookNumber: book, Title: optionalString(record, "title")}
	for k, v := range record {
		if k == "book_number" || k == "title" {
			continue
		}
		if event.Details == nil {
			event.Details = map[string]any{}
		}
		event.Details[k] = NormalizeValue(v)
	}
	return event, nil
}

// MarshalJSON writes the event as one flat object.
func (e TimelineEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Details)+2)
	maps.Copy(out, e.Details)
	out["book_number"] = e.BookNumber
	out["title"] = e.Title
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat event object.
func (e *TimelineEvent) UnmarshalJSON(data []byte) error {
	record, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	event, err := TimelineEventFromRecord(record)
	if err != nil {
		return err
	}
	*e = event
	return nil
}

// TimelineFromRecord builds a timeline, dropping malformed entries. The
// second return value counts what was dropped.
func TimelineFromRecord(record map[string]any) (Timeline, int) {
	t := NewTimeline()
	dropped := 0

	events, _ := record["events"].([]any)
	for _, item := range events {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		event, err := TimelineEventFromRecord(m)
		if err != nil {
			dropped++
			continue
		}
		t.Events = append(t.Events, event)
	}

	gaps, _ := record["time_gaps"].([]any)
	for _, item := range gaps {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		t.TimeGaps = append(t.TimeGaps, NormalizeRecord(m))
	}

	for name, raw := range AsMap(record["character_ages"]) {
		ages := map[int]int{}
		for bookKey, ageValue := range AsMap(raw) {
			book, err := strconv.Atoi(bookKey)
			age, ok := AsInt(ageValue)
			if err != nil || !ok {
				dropped++
				continue
			}
			ages[book] = age
		}
		t.CharacterAges[name] = ages
	}

	seasons, _ := record["seasonal_progression"].([]any)
	for _, item := range seasons {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		book, ok := AsInt(m["book_number"])
		if !ok {
			dropped++
			continue
		}
		year, _ := AsInt(m["year"])
		t.SeasonalProgression = append(t.SeasonalProgression, SeasonMarker{
			BookNumber: book,
			Season:     optionalString(m, "season"),
			Year:       year,
		})
	}
	return t, dropped
}
