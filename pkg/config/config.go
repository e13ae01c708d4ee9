// Package config loads the optional psrun YAML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds an invocation when neither the caller nor the config
// file supplies a deadline.
const DefaultTimeout = 5 * time.Minute

// AppFs is the filesystem used for config loading. Tests swap it for an
// in-memory filesystem.
var AppFs afero.Fs = afero.NewOsFs()

// Config holds the caller-side settings of the invocation layer. All fields
// are optional; a missing config file is not an error.
type Config struct {
	// Interpreter is the interpreter binary name or path (powershell, pwsh).
	// Empty means the host's conventional default.
	Interpreter string `yaml:"interpreter"`
	// RawTimeout is the default invocation deadline, e.g. "5m", "30s".
	RawTimeout string `yaml:"timeout"`
	// TempDir overrides the OS temporary directory for relay channel files.
	TempDir string `yaml:"temp_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Timeout returns the configured default timeout or DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// Load reads filename over the zero config. A missing file yields the zero
// config without error.
func Load(filename string) (Config, error) {
	var cfg Config

	raw, err := afero.ReadFile(AppFs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks field values that have a constrained domain.
func (c Config) Validate() error {
	if c.RawTimeout != "" {
		if _, err := time.ParseDuration(c.RawTimeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config/flag string to a slog level.
func ParseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", levelStr)
	}
}
