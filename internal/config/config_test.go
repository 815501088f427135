package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.NameServer.ListenAddr)
	assert.Equal(t, 100, cfg.NameServer.LRUSize)
	assert.False(t, cfg.NameServer.EnableExec)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
logging:
  level: debug
  format: json
  output: stdout
name_server:
  listen_addr: "0.0.0.0:9000"
  lru_size: 256
  enable_exec: true
storage_server:
  client_facing_addr: "0.0.0.0:9101"
  nm_facing_addr: "0.0.0.0:9102"
  nm_addr: "0.0.0.0:9000"
  storage_root: /tmp/dfs-store
shutdown_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "0.0.0.0:9000", cfg.NameServer.ListenAddr)
	assert.Equal(t, 256, cfg.NameServer.LRUSize)
	assert.True(t, cfg.NameServer.EnableExec)
	assert.Equal(t, "/tmp/dfs-store", cfg.StorageServer.StorageRoot)
	assert.Equal(t, "/tmp/dfs-store/.shadow", cfg.StorageServer.ShadowRoot)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("DFS_LOGGING_LEVEL", "ERROR")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.NameServer.ListenAddr = "127.0.0.1:8080"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", loaded.NameServer.ListenAddr)
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/dfs/config.yaml", GetDefaultConfigPath())
}
