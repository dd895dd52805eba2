// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all phonebook configuration.
type Config struct {
	Store    Store    `yaml:"store"`
	Display  Display  `yaml:"display"`
	Search   Search   `yaml:"search"`
	FakeData FakeData `yaml:"fakedata"`
	Log      Log      `yaml:"log"`
}

// Store holds backing file settings.
type Store struct {
	File    string `yaml:"file"`
	BaseDir string `yaml:"base_dir"` // Empty: directory of the executable
}

// Display holds listing settings.
type Display struct {
	PageSize int `yaml:"page_size"`
}

// Search holds fuzzy search settings.
type Search struct {
	Threshold int `yaml:"threshold"` // 0..100
}

// FakeData holds synthetic contact generation settings.
type FakeData struct {
	Locale  string `yaml:"locale"`   // "ru" | "en"
	Seed    uint64 `yaml:"seed"`     // 0 picks a random seed
	DataDir string `yaml:"data_dir"` // Local overrides for embedded locale files
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
	File   string `yaml:"file"`   // Empty: stderr
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			File: "contacts.txt",
		},
		Display: Display{
			PageSize: 10,
		},
		Search: Search{
			Threshold: 70,
		},
		FakeData: FakeData{
			Locale: "ru",
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Store.File == "" {
		return errors.New("config: store.file cannot be empty")
	}
	if c.Display.PageSize <= 0 {
		return fmt.Errorf("config: display.page_size must be positive, got %d", c.Display.PageSize)
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 100 {
		return fmt.Errorf("config: search.threshold must be in [0, 100], got %d", c.Search.Threshold)
	}
	switch c.FakeData.Locale {
	case "ru", "en":
		// valid
	default:
		return fmt.Errorf("config: fakedata.locale must be \"ru\" or \"en\", got %q", c.FakeData.Locale)
	}
	switch c.Log.Format {
	case "", "console", "json":
		// valid
	default:
		return fmt.Errorf("config: log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: PHONEBOOK_FILE, PHONEBOOK_BASE_DIR, PHONEBOOK_PAGE_SIZE,
// PHONEBOOK_SEARCH_THRESHOLD, PHONEBOOK_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PHONEBOOK_FILE"); v != "" {
		c.Store.File = v
	}
	if v := os.Getenv("PHONEBOOK_BASE_DIR"); v != "" {
		c.Store.BaseDir = v
	}
	if v := os.Getenv("PHONEBOOK_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PHONEBOOK_PAGE_SIZE %q: %w", v, err)
		}
		c.Display.PageSize = n
	}
	if v := os.Getenv("PHONEBOOK_SEARCH_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PHONEBOOK_SEARCH_THRESHOLD %q: %w", v, err)
		}
		c.Search.Threshold = n
	}
	if v := os.Getenv("PHONEBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store    *rawStore    `yaml:"store"`
	Display  *rawDisplay  `yaml:"display"`
	Search   *rawSearch   `yaml:"search"`
	FakeData *rawFakeData `yaml:"fakedata"`
	Log      *rawLog      `yaml:"log"`
}

type rawStore struct {
	File    *string `yaml:"file"`
	BaseDir *string `yaml:"base_dir"`
}

type rawDisplay struct {
	PageSize *int `yaml:"page_size"`
}

type rawSearch struct {
	Threshold *int `yaml:"threshold"`
}

type rawFakeData struct {
	Locale  *string `yaml:"locale"`
	Seed    *uint64 `yaml:"seed"`
	DataDir *string `yaml:"data_dir"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Store != nil {
		setIf(&c.Store.File, layer.Store.File)
		setIf(&c.Store.BaseDir, layer.Store.BaseDir)
	}
	if layer.Display != nil {
		setIf(&c.Display.PageSize, layer.Display.PageSize)
	}
	if layer.Search != nil {
		setIf(&c.Search.Threshold, layer.Search.Threshold)
	}
	if layer.FakeData != nil {
		setIf(&c.FakeData.Locale, layer.FakeData.Locale)
		setIf(&c.FakeData.Seed, layer.FakeData.Seed)
		setIf(&c.FakeData.DataDir, layer.FakeData.DataDir)
	}
	if layer.Log != nil {
		setIf(&c.Log.Level, layer.Log.Level)
		setIf(&c.Log.Format, layer.Log.Format)
		setIf(&c.Log.File, layer.Log.File)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
