package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.insee.fr/api-sirene/3.11", cfg.Sirene.BaseURL)
	assert.InDelta(t, 0.5, cfg.Sirene.RateLimit, 0.001)
	assert.Empty(t, cfg.Sirene.APIKey)
	assert.Equal(t, "https://api-adresse.data.gouv.fr", cfg.BAN.BaseURL)
	assert.InDelta(t, 10.0, cfg.BAN.RateLimit, 0.001)
	assert.Equal(t, 512, cfg.BAN.CacheSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Data.Manifest)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sirene:
  api_key: file-key
ban:
  cache_size: 64
data:
  manifest: /data/datasets.yaml
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Sirene.APIKey)
	assert.Equal(t, 64, cfg.BAN.CacheSize)
	assert.Equal(t, "/data/datasets.yaml", cfg.Data.Manifest)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "https://api-adresse.data.gouv.fr", cfg.BAN.BaseURL)
	assert.InDelta(t, 0.5, cfg.Sirene.RateLimit, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sirene:
  api_key: file-key
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("QPVZRR_SIRENE_API_KEY", "env-key")
	t.Setenv("QPVZRR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env-key", cfg.Sirene.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("QPVZRR_SERVER_PORT", "3000")
	t.Setenv("QPVZRR_DATA_QPV_PATH", "/data/qpv.gpkg")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/data/qpv.gpkg", cfg.Data.QPVPath)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestValidateSiret(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("siret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sirene.api_key is required")

	cfg.Sirene.APIKey = "key"
	assert.NoError(t, cfg.Validate("siret"))
}

func TestValidateAdresse(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate("adresse"))
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate("serve"))
}

func TestValidateUnknownScope(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation scope")
}
