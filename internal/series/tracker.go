// Package series ties one continuity store to the manager that persists
// it, so each series is handled through an explicit object rather than
// process-wide state.
package series

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
	apperrors "serieskeeper/internal/errors"
	"serieskeeper/internal/ingest"
	"serieskeeper/internal/logging"
	"serieskeeper/internal/metrics"
	"serieskeeper/internal/persist"
	"serieskeeper/internal/prompt"
)

// Options configures a Tracker. Dir is required.
type Options struct {
	Dir         string
	FileName    string
	Retention   int
	Schema      *config.Schema
	SeriesTitle string
	TotalBooks  int
	Logger      *slog.Logger
	Metrics     metrics.Collector
	Now         func() time.Time
}

// OptionsFromConfig maps a project config onto tracker options.
func OptionsFromConfig(cfg *config.ProjectConfig, schema *config.Schema, logger *slog.Logger, collector metrics.Collector) Options {
	return Options{
		Dir:         cfg.StateDir(),
		FileName:    cfg.State.File,
		Retention:   cfg.State.BackupRetention,
		Schema:      schema,
		SeriesTitle: cfg.Series,
		TotalBooks:  cfg.TotalBooks,
		Logger:      logger,
		Metrics:     collector,
	}
}

// Tracker is the continuity state of one series together with its
// persistence. Methods are safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	store   *continuity.Store
	manager *persist.Manager
	logger  *slog.Logger
	metrics metrics.Collector
}

// Open loads the series state, falling back through backups. When the
// series has no state file yet, an empty store is started. A report whose
// Err is non-nil still comes with a usable tracker holding minimal state.
func Open(opts Options) (*Tracker, *persist.LoadReport, error) {
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewNoop()
	}

	manager, err := persist.NewManager(persist.Options{
		Dir:         opts.Dir,
		FileName:    opts.FileName,
		Retention:   opts.Retention,
		Schema:      opts.Schema,
		SeriesTitle: opts.SeriesTitle,
		TotalBooks:  opts.TotalBooks,
		Logger:      opts.Logger,
		Metrics:     collector,
		Now:         opts.Now,
	})
	if err != nil {
		return nil, nil, err
	}

	store, report := manager.Load()
	if store == nil {
		title := opts.SeriesTitle
		if title == "" {
			title = persist.DefaultSeriesTitle
		}
		store = continuity.NewStore(title, opts.TotalBooks, continuity.WithLogger(opts.Logger))
	}

	logger := logging.NewComponentLogger(opts.Logger, "series")
	logger.Info("series opened",
		logging.String(logging.FieldEventType, "series_opened"),
		logging.String(logging.FieldSeries, store.SeriesTitle()),
		logging.String("source", string(report.Source)),
		logging.Int(logging.FieldBook, store.CurrentBookNumber()),
	)

	return &Tracker{
		store:   store,
		manager: manager,
		logger:  logger,
		metrics: collector,
	}, report, nil
}

// Manager returns the persistence manager backing the tracker.
func (t *Tracker) Manager() *persist.Manager { return t.manager }

// Store returns the underlying store. Callers that mutate it directly must
// not use the tracker concurrently.
func (t *Tracker) Store() *continuity.Store { return t.store }

// Save persists the current state.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.manager.Save(t.store)
}

// IngestBook folds one book's generated data into the series and saves it.
func (t *Tracker) IngestBook(bookData map[string]any, bookNumber int) (*ingest.Result, error) {
	if bookNumber < 0 {
		t.metrics.RecordOperation("ingest", metrics.StatusError)
		return nil, apperrors.InvalidInput(fmt.Sprintf("book number %d is negative", bookNumber))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	result := ingest.UpdateContinuityFromBook(t.store, t.manager, bookData, bookNumber)
	status := metrics.StatusSuccess
	if result.SaveErr != nil || len(result.Errors) > 0 {
		status = metrics.StatusError
	}
	t.metrics.RecordOperation("ingest", status)
	return result, nil
}

// StartNewBook advances the series to book n and saves. The in-memory
// advance stands even if the save fails.
func (t *Tracker) StartNewBook(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.StartNewBook(n); err != nil {
		t.metrics.RecordOperation("start_book", metrics.StatusError)
		return err
	}
	t.metrics.RecordOperation("start_book", metrics.StatusSuccess)

	t.logger.Info("book started",
		logging.String(logging.FieldEventType, "book_started"),
		logging.Int(logging.FieldBook, n),
	)
	return t.manager.Save(t.store)
}

// Summary returns what is established before forBook. A negative forBook
// means the current book.
func (t *Tracker) Summary(forBook int) continuity.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	if forBook < 0 {
		return t.store.CurrentSummary()
	}
	return t.store.ContinuitySummary(forBook)
}

// PromptContext renders Summary(forBook) as prompt text.
func (t *Tracker) PromptContext(forBook int) string {
	return prompt.BuildContext(t.Summary(forBook))
}

// CharacterNotes returns development notes for the named character.
func (t *Tracker) CharacterNotes(name string) (continuity.DevelopmentNotes, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	notes, ok := t.store.CharacterDevelopmentNotes(name)
	if !ok {
		return continuity.DevelopmentNotes{}, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("character %q not found", name))
	}
	return notes, nil
}

// Snapshot returns a copy of the whole series state.
func (t *Tracker) Snapshot() continuity.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Snapshot()
}

func (t *Tracker) Characters() []continuity.Character {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Characters()
}

func (t *Tracker) PlotThreads() []continuity.PlotThread {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.PlotThreads()
}

func (t *Tracker) WorldElements() []continuity.WorldElement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.WorldElements()
}
