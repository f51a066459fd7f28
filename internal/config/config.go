package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/filmfinder/config.yaml"

// Config holds all filmfinder configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Stats   StatsConfig   `yaml:"stats"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CatalogConfig describes the relational film catalog.
type CatalogConfig struct {
	Driver       string        `yaml:"driver"` // "mysql" or "sqlite3"
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	Path         string        `yaml:"path"` // sqlite3 catalog file
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// StatsConfig describes where query statistics are written.
type StatsConfig struct {
	MongoURI         string        `yaml:"mongo_uri"`
	MongoHost        string        `yaml:"mongo_host"`
	MongoPort        int           `yaml:"mongo_port"`
	MongoUser        string        `yaml:"mongo_user"`
	MongoPassword    string        `yaml:"mongo_password"`
	Database         string        `yaml:"database"`
	Collection       string        `yaml:"collection"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	RecheckInterval  time.Duration `yaml:"recheck_interval"` // 0 means never re-probe
	OperationTimeout time.Duration `yaml:"operation_timeout"`
	JournalPath      string        `yaml:"journal_path"`
	JournalCapacity  int           `yaml:"journal_capacity"`
}

type SearchConfig struct {
	PageSize       int  `yaml:"page_size"`
	LogZeroResults bool `yaml:"log_zero_results"`
	PopularLimit   int  `yaml:"popular_limit"`
	RecentLimit    int  `yaml:"recent_limit"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	NoColor bool   `yaml:"no_color"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case "mysql":
	case "sqlite3":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the sqlite3 driver")
		}
	default:
		return fmt.Errorf("unknown catalog driver %q (use mysql or sqlite3)", c.Catalog.Driver)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Stats.JournalCapacity <= 0 {
		return fmt.Errorf("stats.journal_capacity must be positive, got %d", c.Stats.JournalCapacity)
	}
	if c.Stats.JournalPath == "" {
		return fmt.Errorf("stats.journal_path is required")
	}
	durations := map[string]time.Duration{
		"catalog.query_timeout":   c.Catalog.QueryTimeout,
		"stats.probe_timeout":     c.Stats.ProbeTimeout,
		"stats.recheck_interval":  c.Stats.RecheckInterval,
		"stats.operation_timeout": c.Stats.OperationTimeout,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}
