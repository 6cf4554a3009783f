// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backends selectable via STORAGE.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// Storage selects the entity store backend: memory or sqlite.
	Storage string `env:"STORAGE" envDefault:"memory"`

	// DBPath is the SQLite database path, used when Storage is sqlite.
	DBPath string `env:"DB_PATH" envDefault:"./data/splittab.db"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat selects the log handler: text (colored) or json.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Storage != StorageMemory && cfg.Storage != StorageSQLite {
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}
