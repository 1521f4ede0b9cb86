// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	// Destination store connection
	Store *StoreConfig

	// Loader settings
	IndexPrefix       string
	BatchSize         int
	Refresh           bool
	DataDir           string
	MappingFile       string
	AirportsFile      string
	CancellationsFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from a .env file (if present), the store
// connection YAML, and environment variable overrides.
func Load(storeConfigPath string) (*Config, error) {
	// A missing .env is normal; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		IndexPrefix:       getEnv("INDEX_PREFIX", "flights"),
		BatchSize:         getEnvAsInt("BATCH_SIZE", 500),
		Refresh:           getEnvAsBool("BULK_REFRESH", false),
		DataDir:           getEnv("DATA_DIR", "data"),
		MappingFile:       getEnv("MAPPING_FILE", "config/mappings-flights.json"),
		AirportsFile:      getEnv("AIRPORTS_FILE", "data/airports.csv.gz"),
		CancellationsFile: getEnv("CANCELLATIONS_FILE", "data/cancellations.csv"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}

	storeCfg, err := LoadStoreConfig(storeConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load store configuration: %w", err)
	}
	cfg.Store = storeCfg

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Store == nil {
		return errors.New("store configuration is required")
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	if c.IndexPrefix == "" {
		return errors.New("index prefix is required")
	}

	return nil
}

// LoadMapping reads the destination schema definition. It is consumed
// opaquely: the loader hands it to the store on index creation and never
// validates documents against it.
func LoadMapping(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapping file not found: %s", path)
	}

	var mapping map[string]interface{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}

	return mapping, nil
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
