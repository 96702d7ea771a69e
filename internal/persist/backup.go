package persist

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"serieskeeper/internal/logging"
)

const (
	backupDirName   = "backups"
	backupTimeStamp = "20060102_150405"
	slotSuffix      = ".backup"
)

// Backup describes one timestamped snapshot in the backups directory.
type Backup struct {
	Path      string
	Name      string
	Timestamp time.Time
	Sequence  int
	Size      int64
	ModTime   time.Time
}

func (m *Manager) stem() string {
	return strings.TrimSuffix(m.fileName, filepath.Ext(m.fileName))
}

func (m *Manager) backupPattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(m.stem()) + `_backup_(\d{8}_\d{6})(?:_(\d+))?\.json$`)
}

// Backups lists timestamped snapshots newest first.
func (m *Manager) Backups() ([]Backup, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list backups: %w", err)
	}

	pattern := m.backupPattern()
	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		ts, err := time.ParseInLocation(backupTimeStamp, match[1], time.UTC)
		if err != nil {
			continue
		}
		seq := 0
		if match[2] != "" {
			seq, _ = strconv.Atoi(match[2])
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Name:      entry.Name(),
			Timestamp: ts,
			Sequence:  seq,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		a, b := backups[i], backups[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence > b.Sequence
		}
		return a.ModTime.After(b.ModTime)
	})
	return backups, nil
}

// snapshotMain copies the current main file into the backups directory and
// prunes old snapshots. A missing main file is not an error.
func (m *Manager) snapshotMain() error {
	if _, err := os.Stat(m.mainPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat state file: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	stamp := m.now().UTC().Format(backupTimeStamp)
	base := fmt.Sprintf("%s_backup_%s", m.stem(), stamp)
	path := filepath.Join(m.backupDir, base+".json")
	for seq := 1; fileExists(path); seq++ {
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s_%d.json", base, seq))
	}

	if err := copyFile(m.mainPath, path); err != nil {
		return fmt.Errorf("snapshot state file: %w", err)
	}
	m.logger.Debug("state snapshot written",
		logging.String(logging.FieldEventType, "backup_written"),
		logging.String(logging.FieldPath, path),
	)

	m.pruneBackups()
	return nil
}

// pruneBackups keeps the newest retention snapshots.
func (m *Manager) pruneBackups() {
	backups, err := m.Backups()
	if err != nil {
		logging.Warn(m.logger, "backup listing failed; nothing pruned", "backup_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "backup directory may exceed retention"),
		)
		return
	}
	if len(backups) <= m.retention {
		return
	}
	for _, b := range backups[m.retention:] {
		if err := os.Remove(b.Path); err != nil {
			logging.Warn(m.logger, "backup remove failed; file remains", "backup_prune_failed",
				logging.String(logging.FieldPath, b.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the backups directory"),
				logging.String(logging.FieldImpact, "old backup remains on disk"),
			)
			continue
		}
		m.logger.Debug("backup pruned",
			logging.String(logging.FieldEventType, "backup_pruned"),
			logging.String(logging.FieldPath, b.Path),
		)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyFile streams src to dst, truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// replaceFile copies src over dst through a temp file and rename.
func replaceFile(src, dst string) error {
	tmp := dst + ".tmp"
	if err := copyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
