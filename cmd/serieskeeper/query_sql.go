package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// querySQLCmd runs read queries against the mirror written by `sync`. The
// JSON state file stays authoritative, so results are only as fresh as the
// last sync.
func querySQLCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Query the series mirror database with SQL",
		Long: `Query the series mirror database with SQL.

Tables: series, characters, plot_threads, world_elements, timeline_events.
Run "serieskeeper sync" first to refresh them. Parameters bind by position:
--param 1=<value> fills the first placeholder (? on SQLite, $1 on PostgreSQL).`,
		Example: `  serieskeeper query sql "SELECT name, location FROM characters WHERE series = ?" --param 1="The Ember Chronicles"
  serieskeeper query sql "SELECT thread_id FROM plot_threads WHERE status = $1" --param 1=active`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParamPairs(paramPairs)
			if err != nil {
				return err
			}
			return runSQL(cmd, strings.Join(args, " "), params)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Positional parameter as <index>=<value>, starting at 1 (repeatable)")
	return cmd
}

func runSQL(cmd *cobra.Command, query string, params map[string]any) error {
	ctx := context.Background()

	a, err := loadApp()
	if err != nil {
		return err
	}
	db, err := openDB(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	rows, err := db.RunSQL(ctx, query, params)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return nil
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

// parseParamPairs turns repeated --param index=value flags into the
// positional parameter map the mirror stores bind from. Blank entries are
// ignored.
func parseParamPairs(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: expected <index>=<value>", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid --param %q: missing index", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}
