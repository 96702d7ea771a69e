// Package persist saves and loads a series' continuity state as one JSON
// file with rotating snapshots and multi-source recovery.
package persist

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
	apperrors "serieskeeper/internal/errors"
	"serieskeeper/internal/logging"
	"serieskeeper/internal/metrics"
)

const lockFileName = ".serieskeeper.lock"

// DefaultSeriesTitle names the minimal state written when nothing is recoverable.
const DefaultSeriesTitle = "Untitled Series"

// Options configures a Manager.
type Options struct {
	// Dir is the series directory. It is created if missing.
	Dir string
	// FileName defaults to config.DefaultStateFile.
	FileName string
	// Retention is the number of timestamped snapshots kept.
	Retention int
	// Schema defaults to the built-in entity schema.
	Schema *config.Schema
	// SeriesTitle and TotalBooks seed the minimal state used when recovery is exhausted.
	SeriesTitle string
	TotalBooks  int
	Logger      *slog.Logger
	Metrics     metrics.Collector
	// Now is the clock used for snapshot names and last_updated.
	Now func() time.Time
}

// Manager owns the files of one series directory.
type Manager struct {
	dir       string
	fileName  string
	mainPath  string
	slotPath  string
	backupDir string
	retention int
	schema    *config.Schema

	seriesTitle string
	totalBooks  int

	lock       *flock.Flock
	logger     *slog.Logger
	baseLogger *slog.Logger
	metrics    metrics.Collector
	now        func() time.Time
}

// NewManager prepares the series directory. Failing to create it is the
// only fatal persistence error.
func NewManager(opts Options) (*Manager, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, apperrors.InvalidInput("series directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "create series directory", err)
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = config.DefaultStateFile
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = config.DefaultBackupRetention
	}
	schema := opts.Schema
	if schema == nil {
		var err error
		schema, err = config.DefaultSchema()
		if err != nil {
			return nil, err
		}
	}
	title := opts.SeriesTitle
	if strings.TrimSpace(title) == "" {
		title = DefaultSeriesTitle
	}
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewNoop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mainPath := filepath.Join(dir, fileName)
	return &Manager{
		dir:         dir,
		fileName:    fileName,
		mainPath:    mainPath,
		slotPath:    mainPath + slotSuffix,
		backupDir:   filepath.Join(dir, backupDirName),
		retention:   retention,
		schema:      schema,
		seriesTitle: title,
		totalBooks:  opts.TotalBooks,
		lock:        flock.New(filepath.Join(dir, lockFileName)),
		logger:      logging.NewComponentLogger(opts.Logger, "persist"),
		baseLogger:  opts.Logger,
		metrics:     collector,
		now:         now,
	}, nil
}

// Path is the main state file.
func (m *Manager) Path() string { return m.mainPath }

// Dir is the series directory.
func (m *Manager) Dir() string { return m.dir }

// Schema is the entity schema used for validation.
func (m *Manager) Schema() *config.Schema { return m.schema }

// Save writes the store atomically: validate the encoded state, snapshot the
// current file, write and re-check a temp file, keep the previous main
// file in the fixed backup slot, then rename over the main file. The main
// file is never left partially written.
func (m *Manager) Save(store *continuity.Store) (err error) {
	defer func() {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
		}
		m.metrics.RecordOperation("save", status)
	}()

	if store == nil {
		return apperrors.InvalidInput("store is required")
	}

	locked, err := m.lock.TryLock()
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "acquire state lock", err)
	}
	if !locked {
		return apperrors.New(apperrors.CodePersistenceFailure, "another process is writing this series")
	}
	defer func() {
		if unlockErr := m.lock.Unlock(); unlockErr != nil {
			logging.Warn(m.logger, "failed to release state lock", "lock_release_failed", logging.Error(unlockErr))
		}
	}()

	updated := m.now()
	data, err := encodeState(store.Snapshot(), updated)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "encode state", err)
	}
	if err := checkEncoded(m.schema, data); err != nil {
		return apperrors.Wrap(apperrors.CodeValidationFailure, "state failed validation before write", err)
	}

	// Rejected states must not rotate out a good snapshot.
	if snapErr := m.snapshotMain(); snapErr != nil {
		logging.Warn(m.logger, "state snapshot failed; saving without it", "backup_failed",
			logging.Error(snapErr),
			logging.String(logging.FieldImpact, "no timestamped backup of the previous state"),
		)
	}

	tmpPath, err := m.writeTemp(data)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "write temp state", err)
	}

	written, err := os.ReadFile(tmpPath)
	if err == nil {
		err = checkEncoded(m.schema, written)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.CodeValidationFailure, "temp state failed re-validation", err)
	}

	if fileExists(m.mainPath) {
		if err := copyFile(m.mainPath, m.slotPath); err != nil {
			_ = os.Remove(tmpPath)
			return apperrors.Wrap(apperrors.CodePersistenceFailure, "copy state to backup slot", err)
		}
	}

	if err := os.Rename(tmpPath, m.mainPath); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "rename temp state", err)
	}

	store.SetLastUpdated(updated)
	m.recordCounts(store)
	m.logger.Info("series state saved",
		logging.String(logging.FieldEventType, "state_saved"),
		logging.String(logging.FieldSeries, store.SeriesTitle()),
		logging.Int(logging.FieldBook, store.CurrentBookNumber()),
		logging.String(logging.FieldPath, m.mainPath),
	)
	return nil
}

func (m *Manager) writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp(m.dir, "."+m.fileName+".*.tmp")
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (m *Manager) recordCounts(store *continuity.Store) {
	characters, threads, elements := store.Counts()
	m.metrics.SetEntityCount(config.KindCharacter, characters)
	m.metrics.SetEntityCount(config.KindPlotThread, threads)
	m.metrics.SetEntityCount(config.KindWorldElement, elements)
}
