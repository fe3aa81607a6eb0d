// Package config loads the runtime settings of the pypes command.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sarchlab/pypes/logging"
)

// Prefix is the prefix of every environment variable read by Load.
const Prefix = "PYPES"

// Config holds the runtime settings.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`

	// StallLimit is the number of ticks without progress after which a
	// pipeline is aborted. Zero disables the limit.
	StallLimit int  `envconfig:"STALL_LIMIT" default:"0"`
	Trace      bool `envconfig:"TRACE" default:"false"`

	// Monitor enables the monitoring server. A zero port picks a random
	// one.
	Monitor     bool `envconfig:"MONITOR" default:"false"`
	MonitorPort int  `envconfig:"MONITOR_PORT" default:"0"`

	// RecordPath is a SQLite file or a clickhouse:// DSN. Empty disables
	// recording.
	RecordPath string `envconfig:"RECORD_PATH"`
}

// Load reads the optional dotenv files and then the environment. Variables
// already set in the environment win over the dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}

	for _, f := range dotenvFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.StallLimit < 0 {
		return nil, fmt.Errorf("failed to load config: negative stall limit %d",
			cfg.StallLimit)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// LoggingConfig converts the settings into a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.Development

	return cfg
}
