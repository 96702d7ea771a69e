package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Series != "The Ember Chronicles" {
			t.Fatalf("expected series name, got %q", cfg.Series)
		}
		if cfg.State.File != DefaultStateFile || cfg.State.BackupRetention != DefaultBackupRetention {
			t.Fatalf("expected state defaults, got %+v", cfg.State)
		}
		if cfg.StateDir() != filepath.Join("testdata", "series", "ember") {
			t.Fatalf("expected state dir relative to config, got %q", cfg.StateDir())
		}
	})

	t.Run("missing series name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nstate:\n  dir: ./state\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "series: test\nversion: 2\nstate:\n  dir: ./state\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing state dir", func(t *testing.T) {
		path := writeTempConfig(t, "series: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("negative retention", func(t *testing.T) {
		path := writeTempConfig(t, "series: test\nversion: 1\nstate:\n  dir: ./state\n  backup_retention: -1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("state file with directory", func(t *testing.T) {
		path := writeTempConfig(t, "series: test\nversion: 1\nstate:\n  dir: ./state\n  file: nested/state.json\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SERIESKEEPER_STATE_DIR", "/srv/series")
	t.Setenv("SERIESKEEPER_LOG_LEVEL", "warn")
	t.Setenv("SERIESKEEPER_DATABASE_DSN", "postgres://localhost/series")

	cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StateDir() != "/srv/series" {
		t.Fatalf("expected env state dir, got %q", cfg.StateDir())
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected file log format kept, got %q", cfg.Logging.Format)
	}
	if cfg.Database.DSN != "postgres://localhost/series" {
		t.Fatalf("expected env dsn, got %q", cfg.Database.DSN)
	}
}

func TestLoadEntitySchema(t *testing.T) {
	t.Run("built-in when unset", func(t *testing.T) {
		cfg := &ProjectConfig{}
		schema, err := cfg.LoadEntitySchema()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !schema.IsValidEntityType(KindCharacter) {
			t.Fatalf("expected built-in character type")
		}
	})

	t.Run("override relative to config", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		cfg.Schema = "valid_schema.yaml"
		schema, err := cfg.LoadEntitySchema()
		if err != nil {
			t.Fatalf("load schema: %v", err)
		}
		if schema.Defaults(KindCharacter)["mood"] != "calm" {
			t.Fatalf("expected override schema defaults")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "serieskeeper.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
