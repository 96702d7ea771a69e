package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"serieskeeper/internal/continuity"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}

func sampleSnapshot(t *testing.T) continuity.Snapshot {
	t.Helper()
	s := continuity.NewStore("Ember", 5)
	if _, err := s.AddCharacter("Aria", "alive", "Keep", continuity.InBook(2)); err != nil {
		t.Fatalf("character: %v", err)
	}
	if err := s.MergeRelationships("Aria", map[string]string{"Bren": "brother"}); err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if err := s.AddAbilities("Aria", "fire"); err != nil {
		t.Fatalf("abilities: %v", err)
	}
	if _, err := s.AddCharacter("Bren", "deceased", "Crypt", continuity.InBook(1)); err != nil {
		t.Fatalf("character: %v", err)
	}
	if _, err := s.AddPlotThread("t1", "Quest", "Find the ember", continuity.ImportanceMajor, continuity.InBook(1)); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if _, err := s.AddPlotThread("t2", "Feud", "Old grudge", continuity.ImportanceSubplot, continuity.InBook(1)); err != nil {
		t.Fatalf("thread: %v", err)
	}
	resolved := 2
	if _, err := s.UpdatePlotThread("t2", continuity.ThreadUpdate{ResolutionBook: &resolved, ConnectCharacters: []string{"Aria"}}); err != nil {
		t.Fatalf("update thread: %v", err)
	}
	if _, err := s.AddWorldElement("w1", "Ashfall", "location", "A burned city", continuity.InBook(1)); err != nil {
		t.Fatalf("element: %v", err)
	}
	if err := s.AddTimelineEvent(1, "The Spark", map[string]any{"summary": "begins"}); err != nil {
		t.Fatalf("event: %v", err)
	}
	s.SetLastUpdated(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return s.Snapshot()
}

func TestSyncSeries(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if err := client.SyncSeries(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("sync: %v", err)
	}

	characters, err := client.ListCharacters(ctx, "Ember")
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 2 || characters[0].Name != "Aria" {
		t.Fatalf("unexpected characters: %+v", characters)
	}
	if characters[0].Relationships["Bren"] != "brother" || !reflect.DeepEqual(characters[0].Abilities, []string{"fire"}) {
		t.Fatalf("unexpected character columns: %+v", characters[0])
	}

	resolved, err := client.ListPlotThreads(ctx, "Ember", string(continuity.ThreadResolved))
	if err != nil {
		t.Fatalf("list threads: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ThreadID != "t2" {
		t.Fatalf("unexpected resolved threads: %+v", resolved)
	}
	if resolved[0].ResolutionBook == nil || *resolved[0].ResolutionBook != 2 {
		t.Fatalf("expected resolution book 2, got %v", resolved[0].ResolutionBook)
	}
	if !reflect.DeepEqual(resolved[0].Characters, []string{"Aria"}) {
		t.Fatalf("unexpected connected characters: %v", resolved[0].Characters)
	}

	all, err := client.ListPlotThreads(ctx, "", "")
	if err != nil {
		t.Fatalf("list all threads: %v", err)
	}
	if len(all) != 2 || all[0].ResolutionBook != nil {
		t.Fatalf("unexpected threads: %+v", all)
	}
}

func TestSyncSeries_ReplacesRows(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if err := client.SyncSeries(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	smaller := continuity.NewStore("Ember", 5)
	if _, err := smaller.AddCharacter("Cael", "alive", "Port", continuity.InBook(3)); err != nil {
		t.Fatalf("character: %v", err)
	}
	if err := client.SyncSeries(ctx, smaller.Snapshot()); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	other := continuity.NewStore("Tides", 3)
	if _, err := other.AddCharacter("Mira", "alive", "Shore"); err != nil {
		t.Fatalf("character: %v", err)
	}
	if err := client.SyncSeries(ctx, other.Snapshot()); err != nil {
		t.Fatalf("other sync: %v", err)
	}

	characters, err := client.ListCharacters(ctx, "Ember")
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 1 || characters[0].Name != "Cael" {
		t.Fatalf("expected only Cael after resync, got %+v", characters)
	}

	rows, err := client.RunSQL(ctx, "SELECT COUNT(*) AS n FROM timeline_events WHERE series = ?", map[string]any{"1": "Ember"})
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if len(rows) != 1 || rows[0]["n"] != int64(0) {
		t.Fatalf("expected stale events removed, got %v", rows)
	}

	everyone, err := client.ListCharacters(ctx, "")
	if err != nil {
		t.Fatalf("list all characters: %v", err)
	}
	if len(everyone) != 2 {
		t.Fatalf("expected characters of both series, got %+v", everyone)
	}
}

func TestRunSQL_DecodesTextColumns(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	if err := client.SyncSeries(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rows, err := client.RunSQL(ctx, "SELECT title, details FROM timeline_events ORDER BY position", nil)
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if len(rows) != 1 || rows[0]["title"] != "The Spark" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if _, ok := rows[0]["details"].(string); !ok {
		t.Fatalf("expected details as string, got %T", rows[0]["details"])
	}

	if _, err := client.RunSQL(ctx, "SELECT * FROM missing_table", nil); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute", input: "sqlite:///var/lib/series.db", expected: "/var/lib/series.db"},
		{name: "dot relative", input: "sqlite://./series.db", expected: "./series.db"},
		{name: "bare relative", input: "sqlite://series.db", expected: "./series.db"},
		{name: "query", input: "sqlite://series.db?mode=ro", expected: "./series.db?mode=ro"},
		{name: "escaped", input: "sqlite://my%20series.db", expected: "./my series.db"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- comment\nCREATE TABLE a (x INTEGER);\nCREATE INDEX i ON a (x);")
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
}
