// Package config loads CLI settings from defaults, an optional TOML file
// and MEMBERREG_* environment variables, in that order of precedence
// (later wins). Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Transaction ID schemes.
const (
	IDSchemeContent = "content"
	IDSchemeUUIDv7  = "uuid7"
)

// Config holds resolved CLI settings.
type Config struct {
	// Database is the SQLite file path.
	Database string `env:"MEMBERREG_DB"`

	// Sender is the default caller identity for mutating commands.
	Sender string `env:"MEMBERREG_SENDER"`

	// Format is the output format: "text" or "json".
	Format string `env:"MEMBERREG_FORMAT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"MEMBERREG_LOG_LEVEL"`

	// TxIDs selects how transaction IDs are assigned: "content" or "uuid7".
	TxIDs string `env:"MEMBERREG_TX_IDS"`
}

// EnvConfigPath names the variable that points at a config file when
// --config is not given.
const EnvConfigPath = "MEMBERREG_CONFIG"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database: "memberreg.db",
		Format:   "text",
		LogLevel: "warn",
		TxIDs:    IDSchemeContent,
	}
}

// memberreg.toml key mapping.
type fileConfig struct {
	Database string `toml:"database"`
	Sender   string `toml:"sender"`
	Format   string `toml:"format"`
	LogLevel string `toml:"log_level"`
	TxIDs    string `toml:"tx_ids"`
}

// Load resolves settings. An empty path falls back to $MEMBERREG_CONFIG;
// if both are empty no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overlayFile applies the keys present in the TOML file at path.
func overlayFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("database") {
		cfg.Database = strings.TrimSpace(raw.Database)
	}
	if meta.IsDefined("sender") {
		cfg.Sender = strings.TrimSpace(raw.Sender)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("tx_ids") {
		cfg.TxIDs = strings.TrimSpace(raw.TxIDs)
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database path is empty")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid format %q: must be one of [text json]", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.TxIDs {
	case IDSchemeContent, IDSchemeUUIDv7:
	default:
		return fmt.Errorf("config: invalid tx_ids %q: must be one of [%s %s]", c.TxIDs, IDSchemeContent, IDSchemeUUIDv7)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: invalid log level %q", name)
	}
}
