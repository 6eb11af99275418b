package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls an engine instance: where it persists tables, whether
// the ownership layer is active, and the ambient logging setup around it.
// It is the YAML-loadable counterpart of the arguments spec §4.4's
// `open(dir, auth_enabled)` takes directly.
type Config struct {
	// Dir is the persistence directory (spec §6).
	Dir string `yaml:"dir"`

	// AuthEnabled turns on the users table, sessions, and the ownership
	// overlay (spec §4.4).
	AuthEnabled bool `yaml:"auth_enabled"`

	// SessionTTL is how long an issued session token remains valid
	// (spec §4.2). Zero falls back to auth.DefaultTTL.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// LogLevel is one of trace/debug/info/warn/error.
	LogLevel string `yaml:"log_level"`

	// LogDir is where the file logger writes run logs. Empty disables
	// file logging.
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns a Config with the engine's documented defaults:
// auth disabled, a 24-hour session TTL, info-level logging, and an empty
// LogDir, so file logging is disabled.
func DefaultConfig(dir string) *Config {
	return &Config{
		Dir:         dir,
		AuthEnabled: false,
		SessionTTL:  24 * time.Hour,
		LogLevel:    "info",
		LogDir:      "",
	}
}

// LoadConfig loads YAML configuration from path, merging it over
// DefaultConfig(dir). A missing file is not an error: defaults are
// returned unchanged, mirroring the teacher's LoadConfig semantics.
func LoadConfig(path, dir string) (*Config, error) {
	cfg := DefaultConfig(dir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if file.Dir != "" {
		cfg.Dir = file.Dir
	}
	if file.SessionTTL != 0 {
		cfg.SessionTTL = file.SessionTTL
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	cfg.AuthEnabled = file.AuthEnabled || cfg.AuthEnabled

	return cfg, nil
}
