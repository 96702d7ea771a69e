package main

import (
	"context"
	"fmt"
	"strings"

	"serieskeeper/internal/config"
	"serieskeeper/internal/store"
	"serieskeeper/internal/store/postgres"
	"serieskeeper/internal/store/sqlite"
)

// openDB picks the mirror backend from the DSN scheme.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := strings.TrimSpace(cfg.Database.DSN)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("database.dsn is not configured")
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	default:
		return postgres.New(ctx, dsn)
	}
}
