// Package config loads testreport settings from .testreport.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up at the project root.
const FileName = ".testreport.yaml"

// Defaults.
const (
	DefaultReportsDir       = "tests/reports"
	DefaultBenchmarksDir    = "target/criterion"
	DefaultBenchmarkVariant = "base"
	DefaultTitle            = "Rust Video Editor - Test Report"
	DefaultNarrativeRows    = 10
	DefaultMaxFileSize      = 64 * 1024 * 1024 // 64MB
	DefaultMaxLineLength    = 1 * 1024 * 1024  // 1MB
	DefaultTrendRuns        = 20
	DefaultServeAddr        = ":8080"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	Root             string `yaml:"-"`
	ReportsDir       string `yaml:"reports_dir"`
	BenchmarksDir    string `yaml:"benchmarks_dir"`
	BenchmarkVariant string `yaml:"benchmark_variant"` // "base" or "new"
	Title            string `yaml:"title"`
	NarrativeRows    int    `yaml:"narrative_rows"`
	MaxFileSize      int64  `yaml:"max_file_size"`   // In bytes
	MaxLineLength    int    `yaml:"max_line_length"` // In bytes

	History HistoryConfig `yaml:"history"`
	Publish PublishConfig `yaml:"publish"`
	Serve   ServeConfig   `yaml:"serve"`
}

// HistoryConfig selects the optional run history store. An empty Driver
// disables it.
type HistoryConfig struct {
	Driver    string `yaml:"driver"` // sqlite, postgres, mysql
	DSN       string `yaml:"dsn"`
	TrendRuns int    `yaml:"trend_runs"`
}

// PublishConfig enables uploading reports to a GCS bucket.
type PublishConfig struct {
	GCSBucket       string `yaml:"gcs_bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint"`
}

// ServeConfig configures the serve subcommand.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Root:             root,
		ReportsDir:       DefaultReportsDir,
		BenchmarksDir:    DefaultBenchmarksDir,
		BenchmarkVariant: DefaultBenchmarkVariant,
		Title:            DefaultTitle,
		NarrativeRows:    DefaultNarrativeRows,
		MaxFileSize:      DefaultMaxFileSize,
		MaxLineLength:    DefaultMaxLineLength,
		History:          HistoryConfig{TrendRuns: DefaultTrendRuns},
		Serve:            ServeConfig{Addr: DefaultServeAddr},
	}
}

// Load resolves the configuration: defaults, then the YAML file (path, or
// <root>/.testreport.yaml when path is empty), then environment overrides.
// A missing default file is not an error; a missing explicit path is.
func Load(root, path string) (*Config, error) {
	if v := os.Getenv("TESTREPORT_ROOT"); v != "" {
		root = v
	}
	cfg := Default(root)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TESTREPORT_REPORTS_DIR"); v != "" {
		c.ReportsDir = v
	}
	if v := os.Getenv("TESTREPORT_BENCHMARK_VARIANT"); v != "" {
		c.BenchmarkVariant = v
	}
	if v := os.Getenv("TESTREPORT_NARRATIVE_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NarrativeRows = n
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.History.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv("TESTREPORT_GCS_BUCKET"); v != "" {
		c.Publish.GCSBucket = v
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.BenchmarkVariant {
	case "base", "new":
	default:
		return fmt.Errorf("benchmark_variant must be \"base\" or \"new\", got %q", c.BenchmarkVariant)
	}
	switch c.History.Driver {
	case "", "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported history driver %q", c.History.Driver)
	}
	if c.NarrativeRows <= 0 {
		c.NarrativeRows = DefaultNarrativeRows
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	if c.History.TrendRuns <= 0 {
		c.History.TrendRuns = DefaultTrendRuns
	}
	return nil
}

// ReportsPath is the absolute-or-root-relative reports directory.
func (c *Config) ReportsPath() string {
	return c.resolve(c.ReportsDir)
}

// BenchmarksPath is the criterion output root.
func (c *Config) BenchmarksPath() string {
	return c.resolve(c.BenchmarksDir)
}

// HistoryDSN returns the DSN, defaulting sqlite to a file in the reports
// directory.
func (c *Config) HistoryDSN() string {
	if c.History.DSN == "" && c.History.Driver == "sqlite" {
		return filepath.Join(c.ReportsPath(), "history.db")
	}
	return c.History.DSN
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}
