package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"serieskeeper/internal/continuity"
	apperrors "serieskeeper/internal/errors"
	"serieskeeper/internal/logging"
	"serieskeeper/internal/validate"
)

// Source names where a loaded state came from.
type Source string

const (
	SourceNone       Source = "none"
	SourceMain       Source = "main"
	SourceBackup     Source = "backup"
	SourceBackupSlot Source = "backup_slot"
	SourceMinimal    Source = "minimal"
)

// StrategyFailure records one recovery source that could not be used.
type StrategyFailure struct {
	Source Source
	Path   string
	Err    error
}

// LoadReport describes how Load produced its store.
type LoadReport struct {
	Source          Source
	Path            string
	Failures        []StrategyFailure
	SkippedEntities int
}

// Found reports whether any state existed on disk.
func (r *LoadReport) Found() bool { return r.Source != SourceNone }

// Recovered reports whether the state came from somewhere other than the main file.
func (r *LoadReport) Recovered() bool {
	return r.Source != SourceNone && r.Source != SourceMain
}

// Err returns a RecoveryExhausted error when every source failed and a
// minimal state was substituted.
func (r *LoadReport) Err() error {
	if r.Source != SourceMinimal {
		return nil
	}
	var causes []error
	for _, f := range r.Failures {
		causes = append(causes, fmt.Errorf("%s %s: %w", f.Source, f.Path, f.Err))
	}
	return apperrors.Wrap(apperrors.CodeRecoveryExhausted, "no usable state file or backup", errors.Join(causes...))
}

type candidate struct {
	source Source
	path   string
}

// Load reads the series state. A missing main file yields a nil store and
// Source none. Otherwise the main file, the timestamped backups newest
// first and the fixed backup slot are tried in turn; if all fail, a minimal
// empty state is written and returned. The returned store is never nil when
// state existed.
func (m *Manager) Load() (*continuity.Store, *LoadReport) {
	report := &LoadReport{Source: SourceNone}

	if _, err := os.Stat(m.mainPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.metrics.RecordOperation("load", "empty")
			return nil, report
		}
		report.Failures = append(report.Failures, StrategyFailure{Source: SourceMain, Path: m.mainPath, Err: err})
	} else if err := m.snapshotMain(); err != nil {
		logging.Warn(m.logger, "pre-load snapshot failed", "backup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no timestamped backup of the state being loaded"),
		)
	}

	for _, c := range m.candidates() {
		store, skipped, err := m.loadFrom(c.path)
		if err != nil {
			report.Failures = append(report.Failures, StrategyFailure{Source: c.source, Path: c.path, Err: err})
			logging.Warn(m.logger, "state source unusable", "load_strategy_failed",
				logging.String("source", string(c.source)),
				logging.String(logging.FieldPath, c.path),
				logging.Error(err),
			)
			continue
		}

		report.Source = c.source
		report.Path = c.path
		report.SkippedEntities = skipped
		if c.source != SourceMain {
			m.restoreMain(c.path)
			m.metrics.RecordRecovery(string(c.source))
		}
		m.finishLoad(store, report)
		return store, report
	}

	store := continuity.NewStore(m.seriesTitle, m.totalBooks, continuity.WithLogger(m.baseLogger))
	report.Source = SourceMinimal
	report.Path = m.mainPath
	logging.Warn(m.logger, "every state source failed; starting from an empty series", "recovery_exhausted",
		logging.Int("failed_sources", len(report.Failures)),
		logging.String(logging.FieldErrorHint, "inspect the state file and backups directory"),
		logging.String(logging.FieldImpact, "previous continuity is not available"),
	)
	if err := m.Save(store); err != nil {
		logging.Warn(m.logger, "could not persist minimal state", "minimal_state_save_failed", logging.Error(err))
	}
	m.metrics.RecordRecovery(string(SourceMinimal))
	m.finishLoad(store, report)
	return store, report
}

func (m *Manager) candidates() []candidate {
	out := []candidate{{source: SourceMain, path: m.mainPath}}
	backups, err := m.Backups()
	if err != nil {
		logging.Warn(m.logger, "backup listing failed", "backup_list_failed", logging.Error(err))
	}
	for _, b := range backups {
		out = append(out, candidate{source: SourceBackup, path: b.Path})
	}
	return append(out, candidate{source: SourceBackupSlot, path: m.slotPath})
}

func (m *Manager) loadFrom(path string) (*continuity.Store, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodePersistenceFailure, "read state", err)
	}
	record, err := decodeRecord(data)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeValidationFailure, "decode state", err)
	}
	if err := validate.Document(record).Err(); err != nil {
		return nil, 0, err
	}
	store, skipped := m.buildStore(record)
	return store, skipped, nil
}

func (m *Manager) restoreMain(from string) {
	if err := replaceFile(from, m.mainPath); err != nil {
		logging.Warn(m.logger, "could not restore main state from backup", "restore_failed",
			logging.String(logging.FieldPath, from),
			logging.Error(err),
			logging.String(logging.FieldImpact, "main state file stays corrupt until the next save"),
		)
		return
	}
	m.logger.Info("main state restored from backup",
		logging.String(logging.FieldEventType, "state_restored"),
		logging.String(logging.FieldPath, from),
	)
}

func (m *Manager) finishLoad(store *continuity.Store, report *LoadReport) {
	status := "success"
	if report.Recovered() {
		status = "recovered"
	}
	m.metrics.RecordOperation("load", status)
	m.recordCounts(store)
	m.logger.Info("series state loaded",
		logging.String(logging.FieldEventType, "state_loaded"),
		logging.String(logging.FieldSeries, store.SeriesTitle()),
		logging.Int(logging.FieldBook, store.CurrentBookNumber()),
		logging.String("source", string(report.Source)),
		logging.Int("skipped_entities", report.SkippedEntities),
	)
}
