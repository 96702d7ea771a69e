package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project config file looked up by the CLI.
const DefaultFileName = "serieskeeper.yaml"

// Defaults applied when the project file leaves a field empty.
const (
	DefaultStateFile       = "series_state.json"
	DefaultBackupRetention = 5
)

type ProjectConfig struct {
	Series     string         `yaml:"series"`
	Version    int            `yaml:"version"`
	TotalBooks int            `yaml:"total_books"`
	State      StateConfig    `yaml:"state"`
	Logging    LoggingConfig  `yaml:"logging"`
	Database   DatabaseConfig `yaml:"database"`
	// Schema optionally points at an entity schema that replaces the built-in one.
	Schema string `yaml:"schema"`

	baseDir string
}

type StateConfig struct {
	Dir             string `yaml:"dir"`
	File            string `yaml:"file"`
	BackupRetention int    `yaml:"backup_retention"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg.applyDefaults()
	cfg.baseDir = filepath.Dir(path)

	if err := ApplyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if strings.TrimSpace(c.State.File) == "" {
		c.State.File = DefaultStateFile
	}
	if c.State.BackupRetention == 0 {
		c.State.BackupRetention = DefaultBackupRetention
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Series) == "" {
		return fmt.Errorf("series name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if cfg.TotalBooks < 0 {
		return fmt.Errorf("total_books must be non-negative, got %d", cfg.TotalBooks)
	}
	if strings.TrimSpace(cfg.State.Dir) == "" {
		return fmt.Errorf("state dir is required")
	}
	if strings.ContainsAny(cfg.State.File, `/\`) {
		return fmt.Errorf("state file must be a bare file name: %s", cfg.State.File)
	}
	if cfg.State.BackupRetention < 1 {
		return fmt.Errorf("backup_retention must be at least 1, got %d", cfg.State.BackupRetention)
	}
	return nil
}

// ResolvePath makes p absolute relative to the config file's directory.
func (c *ProjectConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// StateDir is the series directory holding the state file and backups.
func (c *ProjectConfig) StateDir() string {
	return c.ResolvePath(c.State.Dir)
}

// LoadEntitySchema returns the project's schema override, or the built-in
// schema when none is configured.
func (c *ProjectConfig) LoadEntitySchema() (*Schema, error) {
	if strings.TrimSpace(c.Schema) == "" {
		return DefaultSchema()
	}
	return LoadSchema(c.ResolvePath(c.Schema))
}
