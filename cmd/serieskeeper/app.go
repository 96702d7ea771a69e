package main

import (
	"fmt"
	"log/slog"
	"os"

	"serieskeeper/internal/config"
	"serieskeeper/internal/logging"
	"serieskeeper/internal/metrics"
	"serieskeeper/internal/series"
)

// app is what every command needs after reading the project config.
type app struct {
	cfg     *config.ProjectConfig
	schema  *config.Schema
	logger  *slog.Logger
	metrics *metrics.PrometheusCollector
}

func loadApp() (*app, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	schema, err := cfg.LoadEntitySchema()
	if err != nil {
		return nil, fmt.Errorf("loading entity schema: %w", err)
	}

	return &app{
		cfg:     cfg,
		schema:  schema,
		logger:  logger.With(logging.String(logging.FieldSeries, cfg.Series)),
		metrics: metrics.NewCollector(),
	}, nil
}

// openTracker loads the series. Recovery from a backup or down to minimal
// state is logged and otherwise tolerated.
func (a *app) openTracker() (*series.Tracker, error) {
	tracker, report, err := series.Open(series.OptionsFromConfig(a.cfg, a.schema, a.logger, a.metrics))
	if err != nil {
		return nil, err
	}
	if recoveryErr := report.Err(); recoveryErr != nil {
		logging.Warn(a.logger, "series state was not recoverable", "recovery_exhausted",
			logging.Error(recoveryErr),
			logging.String(logging.FieldErrorHint, "inspect the backups directory before ingesting further books"),
		)
	} else if report.Recovered() {
		logging.Warn(a.logger, "series state recovered from backup", "state_recovered",
			logging.String("source", string(report.Source)),
			logging.String(logging.FieldPath, report.Path),
		)
	}
	if report.SkippedEntities > 0 {
		logging.Warn(a.logger, "invalid entities dropped while loading", "entities_skipped",
			logging.Int("skipped", report.SkippedEntities),
			logging.String(logging.FieldImpact, "the next save will not contain them"),
		)
	}
	return tracker, nil
}
