package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8090", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10, cfg.API.PageLimit)
	assert.Equal(t, time.Second, cfg.WS.ReconnectBase)
	assert.Equal(t, 30*time.Second, cfg.WS.ReconnectCap)
	assert.Equal(t, 5, cfg.WS.MaxReconnects)
	assert.Equal(t, 60*time.Second, cfg.Server.PongWait)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://api.example.com
  timeout: 3s
ws:
  max_reconnects: 2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.WS.MaxReconnects)
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.API.PageLimit)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://file.example.com
`), 0o600))

	t.Setenv("ADWATCH_API_URL", "https://env.example.com")
	t.Setenv("ADWATCH_PAGE_LIMIT", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, 25, cfg.API.PageLimit)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPathFollowsAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	assert.Equal(t, "configs/config.local.yaml", Path())

	t.Setenv("APP_ENV", "production")
	assert.Equal(t, "configs/config.production.yaml", Path())
}
