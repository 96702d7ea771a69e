//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"serieskeeper/internal/continuity"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("SERIESKEEPER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SERIESKEEPER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	client, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := client.pool.Exec(ctx, `DELETE FROM series WHERE title LIKE 'itest %'`); err != nil {
		t.Fatalf("clear: %v", err)
	}
	return client
}

func TestSyncSeries(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	s := continuity.NewStore("itest Ember", 5)
	if _, err := s.AddCharacter("Aria", "alive", "Keep", continuity.InBook(1)); err != nil {
		t.Fatalf("character: %v", err)
	}
	if err := s.MergeRelationships("Aria", map[string]string{"Bren": "brother"}); err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if _, err := s.AddPlotThread("t1", "Quest", "Find the ember", continuity.ImportanceMajor, continuity.InBook(1)); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if err := s.AddTimelineEvent(1, "The Spark", nil); err != nil {
		t.Fatalf("event: %v", err)
	}

	if err := client.SyncSeries(ctx, s.Snapshot()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := client.SyncSeries(ctx, s.Snapshot()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	characters, err := client.ListCharacters(ctx, "itest Ember")
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 1 || characters[0].Relationships["Bren"] != "brother" {
		t.Fatalf("unexpected characters: %+v", characters)
	}

	threads, err := client.ListPlotThreads(ctx, "itest Ember", "active")
	if err != nil {
		t.Fatalf("list threads: %v", err)
	}
	if len(threads) != 1 || threads[0].ResolutionBook != nil {
		t.Fatalf("unexpected threads: %+v", threads)
	}

	rows, err := client.RunSQL(ctx, "SELECT count(*) AS n FROM timeline_events WHERE series = $1", map[string]any{"1": "itest Ember"})
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if len(rows) != 1 || rows[0]["n"] != int64(1) {
		t.Fatalf("unexpected count: %v", rows)
	}
}
