// Package config loads the service configuration from YAML, a .env file,
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/conf/v3/yaml"
	"github.com/joho/godotenv"
)

// Prefix namespaces environment variables, e.g. DIRECTORY_HTTP_PORT.
const Prefix = "DIRECTORY"

// DefaultPath is used when DIRECTORY_CONFIG is unset.
const DefaultPath = "internal/directory/config/config.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrHelpWanted is returned by Load when --help or --version was requested.
var ErrHelpWanted = conf.ErrHelpWanted

// Config holds all configuration for the service.
type Config struct {
	HTTP struct {
		Port            int           `conf:"default:8080" yaml:"port"`
		ReadTimeout     time.Duration `conf:"default:5s" yaml:"read_timeout"`
		WriteTimeout    time.Duration `conf:"default:10s" yaml:"write_timeout"`
		ShutdownTimeout time.Duration `conf:"default:5s" yaml:"shutdown_timeout"`
		CORSOrigins     []string      `conf:"default:*" yaml:"cors_origins"`
		// RateLimit is requests per minute per client IP; 0 disables it.
		RateLimit int `conf:"default:300" yaml:"rate_limit"`
	} `yaml:"http"`

	Seed struct {
		Path  string        `conf:"default:data/companies.json" yaml:"path"`
		Delay time.Duration `conf:"default:1500ms" yaml:"delay"`
	} `yaml:"seed"`

	Directory struct {
		PageSize int `conf:"default:8" yaml:"page_size"`
	} `yaml:"directory"`

	Store struct {
		Driver string `conf:"default:memory" yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `conf:"default:companies" yaml:"topic"`
	} `yaml:"kafka"`

	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`
}

// Load reads .env if present, then the YAML file at path (skipped when it
// does not exist), then environment variables and flags. On ErrHelpWanted
// the usage text is returned alongside the error.
func Load(path string) (*Config, string, error) {
	_ = godotenv.Load()

	data, err := readFile(path)
	if err != nil {
		return nil, "", err
	}

	var cfg Config
	var parsers []conf.Parsers
	if data != nil {
		parsers = append(parsers, yaml.WithData(data))
	}
	help, err := conf.Parse(Prefix, &cfg, parsers...)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, err
		}
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, "", nil
}

// Path resolves the config file location from DIRECTORY_CONFIG.
func Path() string {
	if p := os.Getenv(Prefix + "_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be in 1..65535 (got %d)", c.HTTP.Port))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, "http.rate_limit must not be negative")
	}
	if c.Seed.Path == "" {
		errs = append(errs, "seed.path is required")
	}
	if c.Seed.Delay < 0 {
		errs = append(errs, "seed.delay must not be negative")
	}
	if c.Directory.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("directory.page_size must be positive (got %d)", c.Directory.PageSize))
	}
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be %q or %q (got %q)", DriverMemory, DriverSQLite, c.Store.Driver))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, "kafka.topic is required when brokers are set")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
}
