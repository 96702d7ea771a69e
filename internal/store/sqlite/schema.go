package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS series (
		title               TEXT PRIMARY KEY,
		current_book_number INTEGER NOT NULL DEFAULT 0,
		total_books_planned INTEGER NOT NULL DEFAULT 0,
		last_updated        TEXT,
		timeline            TEXT DEFAULT '{}',
		synced_at           TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS characters (
		series               TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
		name                 TEXT NOT NULL,
		current_status       TEXT NOT NULL,
		location             TEXT NOT NULL,
		arc_stage            TEXT DEFAULT '',
		last_appearance_book INTEGER NOT NULL,
		relationships        TEXT DEFAULT '{}',
		abilities            TEXT DEFAULT '[]',
		knowledge            TEXT DEFAULT '[]',
		CONSTRAINT pk_characters PRIMARY KEY (series, name)
	);

	CREATE TABLE IF NOT EXISTS plot_threads (
		series               TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
		thread_id            TEXT NOT NULL,
		name                 TEXT NOT NULL,
		description          TEXT NOT NULL,
		status               TEXT NOT NULL,
		importance_level     TEXT NOT NULL,
		introduced_book      INTEGER NOT NULL,
		last_mentioned_book  INTEGER NOT NULL,
		resolution_book      INTEGER,
		connected_characters TEXT DEFAULT '[]',
		CONSTRAINT pk_plot_threads PRIMARY KEY (series, thread_id)
	);

	CREATE TABLE IF NOT EXISTS world_elements (
		series                TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
		element_id            TEXT NOT NULL,
		name                  TEXT NOT NULL,
		element_type          TEXT NOT NULL,
		description           TEXT NOT NULL,
		current_state         TEXT NOT NULL,
		first_introduced_book INTEGER NOT NULL,
		last_mentioned_book   INTEGER NOT NULL,
		rules_and_properties  TEXT DEFAULT '{}',
		CONSTRAINT pk_world_elements PRIMARY KEY (series, element_id)
	);

	CREATE TABLE IF NOT EXISTS timeline_events (
		series      TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		book_number INTEGER NOT NULL,
		title       TEXT NOT NULL,
		details     TEXT DEFAULT '{}',
		CONSTRAINT pk_timeline_events PRIMARY KEY (series, position)
	);

	CREATE INDEX IF NOT EXISTS idx_characters_status ON characters (series, current_status);
	CREATE INDEX IF NOT EXISTS idx_plot_threads_status ON plot_threads (series, status);
	CREATE INDEX IF NOT EXISTS idx_timeline_events_book ON timeline_events (series, book_number);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
