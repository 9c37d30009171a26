// Package config loads rmark settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/rmark/internal/logging"
	"github.com/kk-code-lab/rmark/internal/markup"
	"github.com/kk-code-lab/rmark/internal/textutil"
)

// Config holds all rmark configuration.
type Config struct {
	Markup  MarkupConfig  `yaml:"markup"`
	Page    PageConfig    `yaml:"page"`
	Batch   BatchConfig   `yaml:"batch"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// MarkupConfig mirrors markup.Options.
type MarkupConfig struct {
	HardBreaks       bool `yaml:"hard_breaks"`
	SafeLinks        bool `yaml:"safe_links"`
	NormalizeUnicode bool `yaml:"normalize_unicode"`
	TabWidth         int  `yaml:"tab_width"`
}

// PageConfig controls standalone page output.
type PageConfig struct {
	Standalone bool   `yaml:"standalone"`
	Stylesheet string `yaml:"stylesheet"`
	Lang       string `yaml:"lang"`
}

// BatchConfig controls multi-file conversion.
type BatchConfig struct {
	Concurrency   int      `yaml:"concurrency"` // 0 = number of CPUs
	OutputDir     string   `yaml:"output_dir"`
	Extensions    []string `yaml:"extensions"`
	IncludeHidden bool     `yaml:"include_hidden"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	opts := markup.DefaultOptions()
	return &Config{
		Markup: MarkupConfig{
			HardBreaks:       opts.HardBreaks,
			SafeLinks:        opts.SafeLinks,
			NormalizeUnicode: true,
			TabWidth:         textutil.DefaultTabWidth,
		},
		Page: PageConfig{
			Lang: "en",
		},
		Batch: BatchConfig{
			Extensions: []string{".md", ".markdown"},
		},
		Watch: WatchConfig{
			Debounce: "150ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".rmark", "config.yaml")
	}
	return filepath.Join(dir, "rmark", "config.yaml")
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := envBool("RMARK_HARD_BREAKS"); ok {
		c.Markup.HardBreaks = v
	}
	if v, ok := envBool("RMARK_SAFE_LINKS"); ok {
		c.Markup.SafeLinks = v
	}
	if level := os.Getenv("RMARK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if raw := os.Getenv("RMARK_CONCURRENCY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.Batch.Concurrency = n
		}
	}
}

func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Markup.TabWidth < 0 {
		return fmt.Errorf("markup.tab_width must not be negative, got %d", c.Markup.TabWidth)
	}
	if c.Batch.Concurrency < 0 {
		return fmt.Errorf("batch.concurrency must not be negative, got %d", c.Batch.Concurrency)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Watch.Debounce != "" {
		d, err := time.ParseDuration(c.Watch.Debounce)
		if err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("watch.debounce must not be negative, got %s", d)
		}
	}
	return nil
}

// MarkupOptions converts the markup section into converter options.
func (c *Config) MarkupOptions() markup.Options {
	return markup.Options{
		HardBreaks:       c.Markup.HardBreaks,
		SafeLinks:        c.Markup.SafeLinks,
		NormalizeUnicode: c.Markup.NormalizeUnicode,
		TabWidth:         c.Markup.TabWidth,
	}
}

// Concurrency returns the batch worker count, defaulting to the CPU count.
func (c *Config) Concurrency() int {
	if c.Batch.Concurrency > 0 {
		return c.Batch.Concurrency
	}
	return runtime.NumCPU()
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 150 * time.Millisecond
	}
	return d
}
