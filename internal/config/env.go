package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are operator overrides read from the environment. Empty
// values leave the project file untouched.
type envOverrides struct {
	StateDir    string `env:"SERIESKEEPER_STATE_DIR"`
	LogLevel    string `env:"SERIESKEEPER_LOG_LEVEL"`
	LogFormat   string `env:"SERIESKEEPER_LOG_FORMAT"`
	DatabaseDSN string `env:"SERIESKEEPER_DATABASE_DSN"`
}

// ApplyEnv overlays SERIESKEEPER_* environment variables onto cfg.
func ApplyEnv(cfg *ProjectConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.StateDir != "" {
		cfg.State.Dir = o.StateDir
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.DatabaseDSN != "" {
		cfg.Database.DSN = o.DatabaseDSN
	}
	return nil
}
