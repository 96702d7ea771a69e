package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"serieskeeper/internal/store"
)

func (c *Client) ListCharacters(ctx context.Context, series string) ([]store.CharacterRow, error) {
	query := `
	SELECT series, name, current_status, location, arc_stage, last_appearance_book, relationships, abilities, knowledge
	FROM characters
	WHERE (? = '' OR series = ?)
	ORDER BY series ASC, last_appearance_book DESC, name ASC
	`

	rows, err := c.db.QueryContext(ctx, query, series, series)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	out := make([]store.CharacterRow, 0)
	for rows.Next() {
		var row store.CharacterRow
		var rels, abilities, knowledge string
		if err := rows.Scan(&row.Series, &row.Name, &row.Status, &row.Location, &row.ArcStage,
			&row.LastAppearanceBook, &rels, &abilities, &knowledge); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		if err := json.Unmarshal([]byte(rels), &row.Relationships); err != nil {
			return nil, fmt.Errorf("decoding relationships of %s: %w", row.Name, err)
		}
		if err := json.Unmarshal([]byte(abilities), &row.Abilities); err != nil {
			return nil, fmt.Errorf("decoding abilities of %s: %w", row.Name, err)
		}
		if err := json.Unmarshal([]byte(knowledge), &row.Knowledge); err != nil {
			return nil, fmt.Errorf("decoding knowledge of %s: %w", row.Name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}
	return out, nil
}

func (c *Client) ListPlotThreads(ctx context.Context, series, status string) ([]store.PlotThreadRow, error) {
	query := `
	SELECT series, thread_id, name, description, status, importance_level, introduced_book, last_mentioned_book, resolution_book, connected_characters
	FROM plot_threads
	WHERE (? = '' OR series = ?)
	  AND (? = '' OR status = ?)
	ORDER BY series ASC, introduced_book ASC, thread_id ASC
	`

	rows, err := c.db.QueryContext(ctx, query, series, series, status, status)
	if err != nil {
		return nil, fmt.Errorf("listing plot threads: %w", err)
	}
	defer rows.Close()

	out := make([]store.PlotThreadRow, 0)
	for rows.Next() {
		var row store.PlotThreadRow
		var resolution sql.NullInt64
		var characters string
		if err := rows.Scan(&row.Series, &row.ThreadID, &row.Name, &row.Description, &row.Status, &row.Importance,
			&row.IntroducedBook, &row.LastMentionedBook, &resolution, &characters); err != nil {
			return nil, fmt.Errorf("scanning plot thread: %w", err)
		}
		if resolution.Valid {
			book := int(resolution.Int64)
			row.ResolutionBook = &book
		}
		if err := json.Unmarshal([]byte(characters), &row.Characters); err != nil {
			return nil, fmt.Errorf("decoding characters of %s: %w", row.ThreadID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plot threads: %w", err)
	}
	return out, nil
}
