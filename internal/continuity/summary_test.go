package continuity

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestContinuitySummary_Filters(t *testing.T) {
	s := NewStore("Ember", 5)
	mustAddCharacter(t, s, "Aria", "alive", 1)
	mustAddCharacter(t, s, "Bren", "deceased", 1)
	mustAddCharacter(t, s, "Cael", "ALIVE", 3)
	if _, err := s.AddPlotThread("t1", "Quest", "Find it", ImportanceMajor, InBook(1)); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if _, err := s.AddPlotThread("t2", "Later", "Not yet", ImportanceMinor, InBook(3)); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if _, err := s.AddWorldElement("w1", "Ashfall", "location", "City", InBook(1)); err != nil {
		t.Fatalf("element: %v", err)
	}
	if _, err := s.AddWorldElement("w2", "Gate", "location", "Far", InBook(2)); err != nil {
		t.Fatalf("element: %v", err)
	}
	for book := 1; book <= 3; book++ {
		if err := s.AddTimelineEvent(book, "Book event", nil); err != nil {
			t.Fatalf("event: %v", err)
		}
	}

	sum := s.ContinuitySummary(2)

	if len(sum.ActiveCharacters) != 1 || sum.ActiveCharacters[0].Name != "Aria" {
		t.Fatalf("expected only Aria, got %+v", sum.ActiveCharacters)
	}
	if len(sum.ActivePlotThreads) != 1 || sum.ActivePlotThreads[0].ThreadID != "t1" {
		t.Fatalf("expected only t1, got %+v", sum.ActivePlotThreads)
	}
	if len(sum.EstablishedWorldElements) != 1 || sum.EstablishedWorldElements[0].ElementID != "w1" {
		t.Fatalf("expected only w1, got %+v", sum.EstablishedWorldElements)
	}
	if len(sum.TimelineEvents) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sum.TimelineEvents))
	}
	if sum.Stats.TotalCharacters != 3 || sum.Stats.ActiveCharacters != 1 || sum.Stats.TotalEvents != 3 {
		t.Fatalf("unexpected stats: %+v", sum.Stats)
	}
}

func TestContinuitySummary_CaseInsensitiveStatus(t *testing.T) {
	s := NewStore("Ember", 5)
	mustAddCharacter(t, s, "Aria", "Active", 1)
	sum := s.ContinuitySummary(2)
	if len(sum.ActiveCharacters) != 1 {
		t.Fatalf("expected Active to count as present")
	}
}

func TestContinuitySummary_SkipsInvalid(t *testing.T) {
	s := FromSnapshot(Snapshot{
		SeriesTitle: "Ember",
		Characters: []Character{
			{Name: "Aria", CurrentStatus: "alive", Location: ""},
			{Name: "Bren", CurrentStatus: "alive", Location: "Keep"},
		},
		Timeline: NewTimeline(),
	})
	sum := s.ContinuitySummary(1)
	if len(sum.ActiveCharacters) != 1 || sum.ActiveCharacters[0].Name != "Bren" {
		t.Fatalf("expected invalid character skipped, got %+v", sum.ActiveCharacters)
	}
}

func TestCurrentSummary_UsesCurrentBook(t *testing.T) {
	s := NewStore("Ember", 5)
	mustAddCharacter(t, s, "Aria", "alive", 0)
	if err := s.StartNewBook(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	sum := s.CurrentSummary()
	if sum.ForBookNumber != 1 || len(sum.ActiveCharacters) != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if !NewStore("Empty", 1).CurrentSummary().IsEmpty() {
		t.Fatalf("expected empty summary for empty store")
	}
}

func TestCharacterDevelopmentNotes(t *testing.T) {
	s := NewStore("Ember", 5)
	mustAddCharacter(t, s, "Aria", "alive", 1)
	for i, note := range []string{"a", "b", "c", "d"} {
		if err := s.RecordPersonalityChange("Aria", i+1, note); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	notes, ok := s.CharacterDevelopmentNotes("Aria")
	if !ok {
		t.Fatalf("expected notes")
	}
	if len(notes.RecentPersonalityChanges) != 3 || notes.RecentPersonalityChanges[0] != "Book 2: b" {
		t.Fatalf("expected last 3 changes, got %v", notes.RecentPersonalityChanges)
	}
	if len(notes.Suggestions) != 3 {
		t.Fatalf("expected arc, relationship and knowledge suggestions, got %v", notes.Suggestions)
	}
	if !strings.Contains(notes.Suggestions[0], "motivation") {
		t.Fatalf("expected beginning-stage suggestion first, got %q", notes.Suggestions[0])
	}

	if err := s.SetArcStage("Aria", ArcResolution); err != nil {
		t.Fatalf("arc: %v", err)
	}
	if err := s.MergeRelationships("Aria", map[string]string{"Bren": "ally", "Cael": "rival"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.AddKnowledge("Aria", "k1", "k2", "k3"); err != nil {
		t.Fatalf("knowledge: %v", err)
	}
	notes, _ = s.CharacterDevelopmentNotes("Aria")
	if len(notes.Suggestions) != 1 || !strings.Contains(notes.Suggestions[0], "reflect") {
		t.Fatalf("expected only the resolution suggestion, got %v", notes.Suggestions)
	}

	if _, ok := s.CharacterDevelopmentNotes("Nobody"); ok {
		t.Fatalf("expected no notes for unknown character")
	}
}

func TestTimelineEvent_JSONIsFlat(t *testing.T) {
	event := TimelineEvent{BookNumber: 2, Title: "The Gate", Details: map[string]any{"summary": "opened"}}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record["summary"] != "opened" || record["title"] != "The Gate" {
		t.Fatalf("expected flat record, got %v", record)
	}

	var back TimelineEvent
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.BookNumber != 2 || back.Details["summary"] != "opened" {
		t.Fatalf("unexpected event: %+v", back)
	}
}

func TestPlotThreadFromRecord_DefaultsLastMentioned(t *testing.T) {
	p, err := PlotThreadFromRecord(map[string]any{
		"thread_id":       "t1",
		"name":            "Quest",
		"description":     "Find it",
		"status":          "active",
		"introduced_book": float64(2),
	})
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if p.LastMentionedBook != 2 || p.ImportanceLevel != ImportanceMinor {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	if _, err := PlotThreadFromRecord(map[string]any{"thread_id": "t2"}); err == nil {
		t.Fatalf("expected error for missing fields")
	}
}

func TestTimelineFromRecord_CharacterAges(t *testing.T) {
	tl, dropped := TimelineFromRecord(map[string]any{
		"events":         []any{map[string]any{"book_number": float64(1), "title": "Start"}, "junk"},
		"character_ages": map[string]any{"Aria": map[string]any{"1": float64(16), "x": float64(3)}},
	})
	if dropped != 2 {
		t.Fatalf("expected 2 dropped entries, got %d", dropped)
	}
	if tl.CharacterAges["Aria"][1] != 16 || len(tl.Events) != 1 {
		t.Fatalf("unexpected timeline: %+v", tl)
	}
}

func TestNormalizeValue_Numbers(t *testing.T) {
	got := NormalizeValue(map[string]any{
		"walls":  float64(3),
		"ratio":  2.5,
		"exact":  json.Number("7"),
		"frac":   json.Number("0.25"),
		"wide":   int64(9),
		"nested": []any{float64(1), map[string]any{"depth": float64(2)}},
		"label":  "keep",
	})
	want := map[string]any{
		"walls":  3,
		"ratio":  2.5,
		"exact":  7,
		"frac":   0.25,
		"wide":   9,
		"nested": []any{1, map[string]any{"depth": 2}},
		"label":  "keep",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestDecodeRecord_KeepsIntegers(t *testing.T) {
	record, err := DecodeRecord([]byte(`{"chapter": 4, "weight": 1.5, "tags": [1, "a"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["chapter"] != 4 || record["weight"] != 1.5 {
		t.Fatalf("unexpected numbers: %#v", record)
	}
	if !reflect.DeepEqual(record["tags"], []any{1, "a"}) {
		t.Fatalf("unexpected list: %#v", record["tags"])
	}

	if _, err := DecodeRecord([]byte(`{"a": 1} trailing`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestStore_FreeFormNumbersSurviveJSON(t *testing.T) {
	s := NewStore("Ember", 5)
	if err := s.AddTimelineEvent(1, "The Spark", map[string]any{"chapter": float64(4)}); err != nil {
		t.Fatalf("event: %v", err)
	}
	event := s.Timeline().Events[0]
	if event.Details["chapter"] != 4 {
		t.Fatalf("expected canonical int detail, got %#v", event.Details["chapter"])
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back TimelineEvent
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, event) {
		t.Fatalf("round trip changed event: %#v != %#v", back, event)
	}
}
