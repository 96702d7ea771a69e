// Package store mirrors series continuity state into a relational database
// for ad-hoc SQL querying. The JSON state file stays authoritative; the
// mirror is rebuilt per series on every sync.
package store

import (
	"context"

	"serieskeeper/internal/continuity"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// SyncSeries replaces every row of the snapshot's series in one transaction.
	SyncSeries(ctx context.Context, snap continuity.Snapshot) error

	ListCharacters(ctx context.Context, series string) ([]CharacterRow, error)
	ListPlotThreads(ctx context.Context, series, status string) ([]PlotThreadRow, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
