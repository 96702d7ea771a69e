package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serieskeeper/internal/store"
)

// RunSQL executes query with params bound positionally ($1, $2, ...) and
// returns each row keyed by column name. JSONB columns arrive decoded.
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := c.pool.Query(ctx, query, store.PositionalArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collecting sql rows: %w", err)
	}
	if results == nil {
		results = []map[string]any{}
	}
	return results, nil
}
