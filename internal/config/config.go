package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the config file looked up in the working directory.
const DefaultConfigFilename = ".webpd.yaml"

// DefaultWatchDir is watched when no directory is configured.
const DefaultWatchDir = "~/Pictures"

// SettleDelay is how long a file is left alone after an event before it is read.
// Some writers flush in several steps; this is a heuristic, not a guarantee.
const SettleDelay = 100 * time.Millisecond

// Config holds the startup configuration for the daemon. It is built once
// and must not be modified after the daemon starts.
type Config struct {
	WatchDir      string        `yaml:"watch_dir"`     // Directory to watch (not recursive)
	Crop          bool          `yaml:"crop"`          // If true, crop landscape images to a centred square
	LogLevel      string        `yaml:"log_level"`     // Logging level: debug, info, warn, error
	LogFile       string        `yaml:"log_file"`      // If set, log to this rotating file instead of the console
	Daemonize     bool          `yaml:"daemonize"`     // If true, run as daemon; if false, run in foreground
	Notifications bool          `yaml:"notifications"` // If true, send desktop notifications
	SettleDelay   time.Duration `yaml:"-"`             // Time before processing files
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		WatchDir:    DefaultWatchDir,
		LogLevel:    "info",
		SettleDelay: SettleDelay,
	}
}

// Validate checks the fields that cannot be fixed up later.
func (c *Config) Validate() error {
	if c.WatchDir == "" {
		return fmt.Errorf("watch directory must not be empty")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative: %s", c.SettleDelay)
	}
	return nil
}

// Write saves the configuration to path as YAML.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
