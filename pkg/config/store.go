// pkg/config/store.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig holds the search store connection parameters, read from a YAML
// file with environment variable overrides.
type StoreConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	APIKey    string            `yaml:"api_key"`
	Headers   map[string]string `yaml:"headers"`
	SSLVerify bool              `yaml:"ssl_verify"`
}

// LoadStoreConfig reads the connection YAML and applies env overrides. The
// file may be absent when every required value arrives via environment.
func LoadStoreConfig(path string) (*StoreConfig, error) {
	cfg := &StoreConfig{SSLVerify: true}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse store config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if v := os.Getenv("ES_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("ES_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("ES_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("ES_API_KEY"); v != "" {
		cfg.APIKey = v
	}

	return cfg, nil
}

// Validate ensures the connection settings are usable.
func (c *StoreConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required in the store configuration")
	}
	return nil
}
