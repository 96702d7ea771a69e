package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// PostgreSQL runs a multi-statement Exec in one implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS series (
    title               TEXT PRIMARY KEY,
    current_book_number INTEGER NOT NULL DEFAULT 0,
    total_books_planned INTEGER NOT NULL DEFAULT 0,
    last_updated        TIMESTAMPTZ,
    timeline            JSONB DEFAULT '{}',
    synced_at           TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS characters (
    series               TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
    name                 TEXT NOT NULL,
    current_status       TEXT NOT NULL,
    location             TEXT NOT NULL,
    arc_stage            TEXT DEFAULT '',
    last_appearance_book INTEGER NOT NULL,
    relationships        JSONB DEFAULT '{}',
    abilities            TEXT[] DEFAULT '{}',
    knowledge            TEXT[] DEFAULT '{}',
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
    connected_characters TEXT[] DEFAULT '{}',
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
    rules_and_properties  JSONB DEFAULT '{}',
    CONSTRAINT pk_world_elements PRIMARY KEY (series, element_id)
);

CREATE TABLE IF NOT EXISTS timeline_events (
    series      TEXT NOT NULL REFERENCES series(title) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    book_number INTEGER NOT NULL,
    title       TEXT NOT NULL,
    details     JSONB DEFAULT '{}',
    CONSTRAINT pk_timeline_events PRIMARY KEY (series, position)
);

CREATE INDEX IF NOT EXISTS idx_characters_status ON characters (series, current_status);
CREATE INDEX IF NOT EXISTS idx_characters_relationships ON characters USING GIN (relationships);
CREATE INDEX IF NOT EXISTS idx_plot_threads_status ON plot_threads (series, status);
CREATE INDEX IF NOT EXISTS idx_plot_threads_characters ON plot_threads USING GIN (connected_characters);
CREATE INDEX IF NOT EXISTS idx_timeline_events_book ON timeline_events (series, book_number);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
