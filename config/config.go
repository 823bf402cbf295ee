// Package config loads the demo's persistent settings from
// <profileDir>/recycler.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/miosa/osa-recycler/telemetry"
)

// Filename is the config file name inside the profile directory.
const Filename = "recycler.yaml"

// Strategy names accepted by Config.Strategy.
const (
	StrategyLinear    = "linear"
	StrategyGrid      = "grid"
	StrategyStaggered = "staggered"
)

// MarkdownAuto picks the dark or light glamour style from the active theme.
const MarkdownAuto = "auto"

// Config holds the demo settings. Zero fields in the file keep their
// defaults.
type Config struct {
	Theme         string        `yaml:"theme" validate:"omitempty,oneof=dark light catppuccin tokyo-night"` // empty: detect from the terminal
	Strategy      string        `yaml:"strategy" validate:"oneof=linear grid staggered"`
	SpanCount     int           `yaml:"span_count" validate:"gte=1,lte=12"`
	RangeRatio    float64       `yaml:"range_ratio" validate:"gte=0,lte=10"`
	Workers       int           `yaml:"workers" validate:"gte=1,lte=256"`
	Items         int           `yaml:"items" validate:"gte=0,lte=100000"`
	Latency       time.Duration `yaml:"latency" validate:"gte=0"`
	MarkdownStyle string        `yaml:"markdown_style" validate:"required"` // glamour style, or "auto" to follow the theme
	Gap           int           `yaml:"gap" validate:"gte=0,lte=8"`
	Scrollbar     bool          `yaml:"scrollbar"`
	Sidebar       bool          `yaml:"sidebar"`

	// LogLevel is one of debug, info, warn, error. Logs go to LogFile,
	// relative to the profile directory, since the terminal belongs to the UI.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `yaml:"log_file" validate:"required"`

	Telemetry telemetry.Config `yaml:"telemetry"`
}

var validate = validator.New()

// Default returns the settings used when no file exists.
func Default() Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceName = "osa-recycler"
	tc.TraceExporter = "none"
	tc.MetricExporter = "none"
	return Config{
		Strategy:      StrategyLinear,
		SpanCount:     2,
		RangeRatio:    1.0,
		Workers:       4,
		Items:         500,
		MarkdownStyle: MarkdownAuto,
		Gap:           1,
		Scrollbar:     true,
		Sidebar:       true,
		LogLevel:      "info",
		LogFile:       "recycler.log",
		Telemetry:     tc,
	}
}

// Load reads <profileDir>/recycler.yaml over the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(profileDir string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(profileDir, Filename))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", Filename, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to <profileDir>/recycler.yaml, creating the directory if
// needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(profileDir, Filename), data, 0o644)
}

// applyEnv overrides fields from RECYCLER_* and the standard OTEL_*
// variables. Unparseable values are ignored.
func applyEnv(c *Config) {
	if v := os.Getenv("RECYCLER_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("RECYCLER_RANGE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RangeRatio = f
		}
	}
	if v := os.Getenv("RECYCLER_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.Workers = i
		}
	}
	if v := os.Getenv("RECYCLER_LATENCY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Latency = d
		}
	}
	if v := os.Getenv("OTEL_TRACES_EXPORTER"); v != "" {
		c.Telemetry.TraceExporter = v
	}
	if v := os.Getenv("OTEL_METRICS_EXPORTER"); v != "" {
		c.Telemetry.MetricExporter = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.OTLPEndpoint = v
	}
}
