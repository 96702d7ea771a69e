package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"serieskeeper/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

const openTimeout = 30 * time.Second

// connectionPragmas run once after opening. The pool holds one connection,
// so they hold for every statement.
var connectionPragmas = []string{
	"PRAGMA busy_timeout = 30000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
}

// Client mirrors series snapshots into a SQLite file.
type Client struct {
	db *sql.DB
}

// New opens the database named by a sqlite:// DSN.
func New(ctx context.Context, dsn string) (*Client, error) {
	path, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	if err := prepareConnection(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db}, nil
}

func prepareConnection(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	for _, pragma := range connectionPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}
