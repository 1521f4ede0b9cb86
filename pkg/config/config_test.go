package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStoreYAML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elasticsearch.yml")
	content := "endpoint: https://localhost:9200\nuser: elastic\npassword: changeme\nssl_verify: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeStoreYAML(t))
	require.NoError(t, err)

	assert.Equal(t, "flights", cfg.IndexPrefix)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.False(t, cfg.Refresh)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "config/mappings-flights.json", cfg.MappingFile)

	assert.Equal(t, "https://localhost:9200", cfg.Store.Endpoint)
	assert.Equal(t, "elastic", cfg.Store.User)
	assert.False(t, cfg.Store.SSLVerify)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INDEX_PREFIX", "ontime")
	t.Setenv("BATCH_SIZE", "1000")
	t.Setenv("ES_ENDPOINT", "https://search.internal:9200")

	cfg, err := Load(writeStoreYAML(t))
	require.NoError(t, err)

	assert.Equal(t, "ontime", cfg.IndexPrefix)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, "https://search.internal:9200", cfg.Store.Endpoint)
}

func TestLoadMissingStoreFileNeedsEnvEndpoint(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yml")

	_, err := Load(missing)
	require.Error(t, err)

	t.Setenv("ES_ENDPOINT", "http://localhost:9200")
	cfg, err := Load(missing)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9200", cfg.Store.Endpoint)
	// Env-only configuration keeps TLS verification on.
	assert.True(t, cfg.Store.SSLVerify)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("BATCH_SIZE", "-5")
	_, err := Load(writeStoreYAML(t))
	require.Error(t, err)
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mappings":{"properties":{"Origin":{"type":"keyword"}}}}`), 0o644))

	mapping, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Contains(t, mapping, "mappings")

	_, err = LoadMapping(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping file not found")
}
