package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

func TestParseBiasFlags(t *testing.T) {
	bias, err := parseBiasFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, bias)

	bias, err = parseBiasFlags([]string{"42=100", "7=-100", "9=0.5"})
	require.NoError(t, err)
	assert.Equal(t, shared.LogitBias{42: 100, 7: -100, 9: 0.5}, bias)
}

func TestParseBiasFlagsRejectsMalformedEntries(t *testing.T) {
	for _, entry := range []string{"42", "x=1", "-3=1", "42=high"} {
		_, err := parseBiasFlags([]string{entry})
		assert.Error(t, err, entry)
	}
}

func resetFlags(t *testing.T) {
	t.Helper()
	flagConfig, flagModel, flagSystem, flagBaseURL, flagAddr = "", "", "", "", ""
	flagRetries, flagBurst = 0, 0
	flagRPS = 0
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFlags(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo-instruct", cfg.Model)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	resetFlags(t)

	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = \"gpt-4\"\naddr = \":9090\"\nmax_retries = 3\n"), 0o644))

	flagConfig = path
	flagModel = "gpt-4o"
	flagRetries = 7

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 7, cfg.MaxRetries)
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	resetFlags(t)
	flagConfig = filepath.Join(t.TempDir(), "missing.toml")

	_, err := loadConfig()
	assert.Error(t, err)
}
