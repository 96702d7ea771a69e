package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"serieskeeper/internal/continuity"
	"serieskeeper/internal/store"
)

var seriesTables = []string{"timeline_events", "world_elements", "plot_threads", "characters", "series"}

func (c *Client) SyncSeries(ctx context.Context, snap continuity.Snapshot) error {
	rows, err := store.RowsFromSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range seriesTables {
		key := "series"
		if table == "series" {
			key = "title"
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key), snap.SeriesTitle); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	var lastUpdated any
	if !rows.Series.LastUpdated.IsZero() {
		lastUpdated = rows.Series.LastUpdated.UTC().Format(time.RFC3339)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO series (title, current_book_number, total_books_planned, last_updated, timeline, synced_at)
	VALUES (?, ?, ?, ?, ?, datetime('now'))
	`, rows.Series.Title, rows.Series.CurrentBookNumber, rows.Series.TotalBooksPlanned, lastUpdated, string(rows.Series.Timeline)); err != nil {
		return fmt.Errorf("inserting series: %w", err)
	}

	if err := insertCharacters(ctx, tx, rows.Characters); err != nil {
		return err
	}
	if err := insertThreads(ctx, tx, rows.Threads); err != nil {
		return err
	}

	for _, w := range rows.Elements {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO world_elements (series, element_id, name, element_type, description, current_state, first_introduced_book, last_mentioned_book, rules_and_properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, w.Series, w.ElementID, w.Name, w.Type, w.Description, w.CurrentState, w.FirstIntroducedBook, w.LastMentionedBook, string(w.Rules)); err != nil {
			return fmt.Errorf("inserting world element %s: %w", w.ElementID, err)
		}
	}

	for _, e := range rows.Events {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO timeline_events (series, position, book_number, title, details)
		VALUES (?, ?, ?, ?, ?)
		`, e.Series, e.Position, e.BookNumber, e.Title, string(e.Details)); err != nil {
			return fmt.Errorf("inserting timeline event %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sync transaction: %w", err)
	}
	return nil
}

func insertCharacters(ctx context.Context, tx *sql.Tx, characters []store.CharacterRow) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO characters (series, name, current_status, location, arc_stage, last_appearance_book, relationships, abilities, knowledge)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing character insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range characters {
		rels, err := json.Marshal(ch.Relationships)
		if err != nil {
			return fmt.Errorf("marshaling relationships of %s: %w", ch.Name, err)
		}
		abilities, err := json.Marshal(ch.Abilities)
		if err != nil {
			return fmt.Errorf("marshaling abilities of %s: %w", ch.Name, err)
		}
		knowledge, err := json.Marshal(ch.Knowledge)
		if err != nil {
			return fmt.Errorf("marshaling knowledge of %s: %w", ch.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, ch.Series, ch.Name, ch.Status, ch.Location, ch.ArcStage,
			ch.LastAppearanceBook, string(rels), string(abilities), string(knowledge)); err != nil {
			return fmt.Errorf("inserting character %s: %w", ch.Name, err)
		}
	}
	return nil
}

func insertThreads(ctx context.Context, tx *sql.Tx, threads []store.PlotThreadRow) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO plot_threads (series, thread_id, name, description, status, importance_level, introduced_book, last_mentioned_book, resolution_book, connected_characters)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing plot thread insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range threads {
		characters, err := json.Marshal(p.Characters)
		if err != nil {
			return fmt.Errorf("marshaling characters of %s: %w", p.ThreadID, err)
		}
		var resolution any
		if p.ResolutionBook != nil {
			resolution = *p.ResolutionBook
		}
		if _, err := stmt.ExecContext(ctx, p.Series, p.ThreadID, p.Name, p.Description, p.Status, p.Importance,
			p.IntroducedBook, p.LastMentionedBook, resolution, string(characters)); err != nil {
			return fmt.Errorf("inserting plot thread %s: %w", p.ThreadID, err)
		}
	}
	return nil
}
