package postgres

import (
	"context"
	"fmt"

	"serieskeeper/internal/store"
)

func (c *Client) ListCharacters(ctx context.Context, series string) ([]store.CharacterRow, error) {
	query := `
SELECT series, name, current_status, location, arc_stage, last_appearance_book, relationships, abilities, knowledge
FROM characters
WHERE ($1 = '' OR series = $1)
ORDER BY series ASC, last_appearance_book DESC, name ASC
`

	rows, err := c.pool.Query(ctx, query, series)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	out := make([]store.CharacterRow, 0)
	for rows.Next() {
		var row store.CharacterRow
		if err := rows.Scan(&row.Series, &row.Name, &row.Status, &row.Location, &row.ArcStage,
			&row.LastAppearanceBook, &row.Relationships, &row.Abilities, &row.Knowledge); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
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
WHERE ($1 = '' OR series = $1)
  AND ($2 = '' OR status = $2)
ORDER BY series ASC, introduced_book ASC, thread_id ASC
`

	rows, err := c.pool.Query(ctx, query, series, status)
	if err != nil {
		return nil, fmt.Errorf("listing plot threads: %w", err)
	}
	defer rows.Close()

	out := make([]store.PlotThreadRow, 0)
	for rows.Next() {
		var row store.PlotThreadRow
		if err := rows.Scan(&row.Series, &row.ThreadID, &row.Name, &row.Description, &row.Status, &row.Importance,
			&row.IntroducedBook, &row.LastMentionedBook, &row.ResolutionBook, &row.Characters); err != nil {
			return nil, fmt.Errorf("scanning plot thread: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plot threads: %w", err)
	}
	return out, nil
}
