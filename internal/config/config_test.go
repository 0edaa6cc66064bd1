package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultReferenceURL, cfg.Server.ReferenceURL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Second, cfg.Cache.FlushInterval)
	assert.Equal(t, 10, cfg.UI.MarginBefore)
	assert.Equal(t, 10, cfg.UI.MarginAfter)
	assert.Equal(t, 50*time.Millisecond, cfg.UI.ScrollDebounce)
	assert.Equal(t, 1, cfg.UI.ItemHeight)
	assert.False(t, cfg.IsConfigured())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  url: https://bib.example.org
  global_prefix: public/rfc/
source:
  location: /tmp/paths.txt
cache:
  key: v42
  ttl: 15m
ui:
  margin_before: 3
  scroll_debounce: 120ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://bib.example.org", cfg.Server.URL)
	assert.Equal(t, "public/rfc/", cfg.Server.GlobalPrefix)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.UI.MarginBefore)
	assert.Equal(t, 10, cfg.UI.MarginAfter)
	assert.Equal(t, 120*time.Millisecond, cfg.UI.ScrollDebounce)
	assert.Equal(t, "path-resolution-v42", cfg.CacheStoreKey())
	assert.True(t, cfg.IsConfigured())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RFCPATHS_SERVER_URL", "https://env.example.org")
	t.Setenv("RFCPATHS_CACHE_KEY", "from-env")

	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.org", cfg.Server.URL)
	assert.Equal(t, "from-env", cfg.Cache.Key)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.URL = "https://bib.example.org"
	cfg.Source.Location = "paths.json"
	cfg.Cache.Key = "abc"
	require.NoError(t, Save(viper.New(), cfg, path))

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://bib.example.org", loaded.Server.URL)
	assert.Equal(t, "paths.json", loaded.Source.Location)
	assert.Equal(t, "abc", loaded.Cache.Key)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/logs/x.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "x.log"), got)

	got, err = ExpandHome("/var/log/x.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/x.log", got)
}
