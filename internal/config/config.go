package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pocketwise/internal/debounce"
	applog "pocketwise/internal/log"
	"pocketwise/internal/query"
	"pocketwise/internal/storage"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite}

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Storage
	DataBackend  string `yaml:"data_backend"`
	DataDir      string `yaml:"data_dir"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	StorageKey   string `yaml:"storage_key"`

	// Presentation
	CurrencySymbol    string        `yaml:"currency_symbol"`
	SearchDebounce    time.Duration `yaml:"search_debounce"`
	DefaultCategories []string      `yaml:"default_categories"`

	LogLevel string `yaml:"log_level"`
}

// Load reads the configuration from the environment. When
// POCKETWISE_CONFIG_FILE names a YAML file its values are applied first and
// environment variables override them.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("POCKETWISE_CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:              "8081",
		DataBackend:       BackendFile,
		DataDir:           "./data",
		SQLiteDBPath:      "./data/pocketwise.db",
		StorageKey:        storage.DefaultKey,
		CurrencySymbol:    "₹",
		SearchDebounce:    debounce.DefaultDelay,
		DefaultCategories: append([]string(nil), query.DefaultCategories...),
		LogLevel:          "info",
	}
}

// MergeFile overlays the non-empty values of a YAML file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setString(&c.Port, overlay.Port)
	setString(&c.DataBackend, overlay.DataBackend)
	setString(&c.DataDir, overlay.DataDir)
	setString(&c.SQLiteDBPath, overlay.SQLiteDBPath)
	setString(&c.StorageKey, overlay.StorageKey)
	setString(&c.CurrencySymbol, overlay.CurrencySymbol)
	setString(&c.LogLevel, overlay.LogLevel)
	if overlay.SearchDebounce != 0 {
		c.SearchDebounce = overlay.SearchDebounce
	}
	if len(overlay.DefaultCategories) > 0 {
		c.DefaultCategories = overlay.DefaultCategories
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.StorageKey = getEnv("STORAGE_KEY", c.StorageKey)
	c.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.CurrencySymbol)
	c.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", c.SearchDebounce)
	c.DefaultCategories = getEnvList("DEFAULT_CATEGORIES", c.DefaultCategories)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := ensureDir(dir); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		} else if err := ensureDir(c.DataDir); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
		}
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		errors = append(errors, "storage key cannot be empty")
	}

	if c.SearchDebounce < 0 {
		errors = append(errors, fmt.Sprintf("invalid search debounce %v: must not be negative", c.SearchDebounce))
	} else if c.SearchDebounce > 5*time.Second {
		errors = append(errors, fmt.Sprintf("invalid search debounce %v: must be at most 5 seconds", c.SearchDebounce))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
