package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a saldo project.
const FileName = "saldo.yaml"

// Storage backends.
const (
	StorageCSV      = "csv"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Tagging backends.
const (
	TaggingNone  = "none"
	TaggingFile  = "file"
	TaggingRedis = "redis"
)

// Environment variables overriding file values.
const (
	EnvDatabaseURL = "SALDO_DATABASE_URL"
	EnvRedisAddr   = "SALDO_REDIS_ADDR"
	EnvLogLevel    = "SALDO_LOG_LEVEL"
)

// Config represents the top-level saldo.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Storage  StorageConfig  `yaml:"storage"`
	Tagging  TaggingConfig  `yaml:"tagging"`
	Logging  LoggingConfig  `yaml:"logging"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity and the chart it was set up with.
type BusinessConfig struct {
	Name  string `yaml:"name"`
	Chart string `yaml:"chart"`
}

// StorageConfig selects where bookings and accounts live.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// DSN is the database path or URL. Relative SQLite paths resolve against the
	// project root.
	DSN string `yaml:"dsn,omitempty"`
}

// TaggingConfig selects the account tag source.
type TaggingConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a saldo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// LoadProject reads saldo.yaml from root, loads root/.env into the environment when
// present and applies the environment overrides.
func LoadProject(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file without overriding ones already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Storage.DSN = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Tagging.RedisAddr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the backend names and their required settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case StorageCSV:
	case StorageSQLite, StoragePostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage backend %s requires a dsn (or %s)", c.Storage.Backend, EnvDatabaseURL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Tagging.Backend {
	case TaggingNone, TaggingFile:
	case TaggingRedis:
		if c.Tagging.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("tagging backend redis requires redis_addr (or %s)", EnvRedisAddr))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown tagging backend %q", c.Tagging.Backend))
	}
	return errors.Join(errs...)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, chart string) *Config {
	cfg := &Config{
		Business: BusinessConfig{
			Name:  businessName,
			Chart: chart,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Saldo",
			AuthorEmail: "saldo@localhost",
		},
	}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageCSV
	}
	if c.Tagging.Backend == "" {
		c.Tagging.Backend = TaggingFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
