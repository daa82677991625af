// Package config resolves routinectl settings. Sources are applied in
// order, later ones winning: built-in defaults, a YAML file, a .env file,
// process environment (ROUTINES_ prefix), then command-line flags, which
// the CLI applies itself.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ROUTINES_"

// Config holds routinectl settings.
type Config struct {
	// Storage is the directory holding index.cfg and routines.cfg.
	Storage string `yaml:"storage" env:"STORAGE"`
	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	// Format selects text or json command output.
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=text json"`
	// Journal records flushed documents in journal.db.
	Journal bool `yaml:"journal" env:"JOURNAL"`
	// RangeDays is the window length used by range when --to is omitted.
	RangeDays uint64 `yaml:"range_days" env:"RANGE_DAYS" validate:"gt=0"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:  "warn",
		Format:    "text",
		Journal:   false,
		RangeDays: 7,
	}
}

// Sources names the optional files consulted by Load.
type Sources struct {
	// File is a YAML config file. Empty skips it.
	File string
	// DotEnv is a .env file. A missing file is ignored.
	DotEnv string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Load resolves configuration from defaults, file and environment.
func Load(src Sources) (Config, error) {
	cfg := Defaults()

	if src.File != "" {
		if err := loadFile(src.File, &cfg); err != nil {
			return Config{}, err
		}
	}

	if src.DotEnv != "" {
		if err := godotenv.Load(src.DotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", src.DotEnv, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if src.Environment != nil {
		opts.Environment = src.Environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes a YAML file strictly: unknown keys are errors.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}
