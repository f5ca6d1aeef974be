package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "cfg.toml", `
addr = ":9090"
model = "gpt-4"
max_retries = 3
requests_per_second = 2.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "addr: \":7070\"\nmodel: gpt-3.5-turbo-instruct\nsystem: custom prompt\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "gpt-3.5-turbo-instruct", cfg.Model)
	assert.Equal(t, "custom prompt", cfg.System)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"model": "gpt-4o", "burst": 4}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 4, cfg.Burst)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeFile(t, "cfg.ini", "addr = :8080")
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported config extension")
}
