// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	// Storage
	DataDir    string `env:"CHECKLIST_DATA_DIR"`
	FlatFile   string `env:"CHECKLIST_FLAT_FILE" envDefault:"checklists.json"`
	DBFile     string `env:"CHECKLIST_DB_FILE" envDefault:"checklists.db"`
	DisableSQL bool   `env:"CHECKLIST_DISABLE_SQL" envDefault:"false"`

	// Presentation
	Theme    string `env:"CHECKLIST_THEME" envDefault:"classic"`
	PageSize int    `env:"CHECKLIST_PAGE_SIZE" envDefault:"10"`

	// Runtime
	LogLevel    string        `env:"CHECKLIST_LOG_LEVEL" envDefault:"warn"`
	LoadTimeout time.Duration `env:"CHECKLIST_LOAD_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and fills in the data directory
// (~/.checklist when unset).
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("home: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".checklist")
	}
	if cfg.PageSize < 0 {
		return Config{}, fmt.Errorf("CHECKLIST_PAGE_SIZE must not be negative")
	}
	return cfg, nil
}

// FlatPath is the key-value file location.
func (c Config) FlatPath() string { return c.resolve(c.FlatFile) }

// DBPath is the SQLite database location.
func (c Config) DBPath() string { return c.resolve(c.DBFile) }

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Level maps LogLevel to a slog level, defaulting to warn.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
