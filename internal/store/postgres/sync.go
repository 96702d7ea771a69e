package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serieskeeper/internal/continuity"
	"serieskeeper/internal/store"
)

func (c *Client) SyncSeries(ctx context.Context, snap continuity.Snapshot) error {
	rows, err := store.RowsFromSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Child rows go with the series row through ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM series WHERE title = $1`, snap.SeriesTitle); err != nil {
		return fmt.Errorf("clearing series: %w", err)
	}

	var lastUpdated any
	if !rows.Series.LastUpdated.IsZero() {
		lastUpdated = rows.Series.LastUpdated.UTC()
	}

	batch := &pgx.Batch{}
	batch.Queue(`
INSERT INTO series (title, current_book_number, total_books_planned, last_updated, timeline, synced_at)
VALUES ($1, $2, $3, $4, $5, now())
`, rows.Series.Title, rows.Series.CurrentBookNumber, rows.Series.TotalBooksPlanned, lastUpdated, rows.Series.Timeline)

	for _, ch := range rows.Characters {
		rels, err := json.Marshal(ch.Relationships)
		if err != nil {
			return fmt.Errorf("marshaling relationships of %s: %w", ch.Name, err)
		}
		batch.Queue(`
INSERT INTO characters (series, name, current_status, location, arc_stage, last_appearance_book, relationships, abilities, knowledge)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, ch.Series, ch.Name, ch.Status, ch.Location, ch.ArcStage, ch.LastAppearanceBook, rels, textArray(ch.Abilities), textArray(ch.Knowledge))
	}

	for _, p := range rows.Threads {
		batch.Queue(`
INSERT INTO plot_threads (series, thread_id, name, description, status, importance_level, introduced_book, last_mentioned_book, resolution_book, connected_characters)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, p.Series, p.ThreadID, p.Name, p.Description, p.Status, p.Importance, p.IntroducedBook, p.LastMentionedBook, p.ResolutionBook, textArray(p.Characters))
	}

	for _, w := range rows.Elements {
		batch.Queue(`
INSERT INTO world_elements (series, element_id, name, element_type, description, current_state, first_introduced_book, last_mentioned_book, rules_and_properties)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, w.Series, w.ElementID, w.Name, w.Type, w.Description, w.CurrentState, w.FirstIntroducedBook, w.LastMentionedBook, w.Rules)
	}

	for _, e := range rows.Events {
		batch.Queue(`
INSERT INTO timeline_events (series, position, book_number, title, details)
VALUES ($1, $2, $3, $4, $5)
`, e.Series, e.Position, e.BookNumber, e.Title, e.Details)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting series rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sync transaction: %w", err)
	}
	return nil
}

func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
