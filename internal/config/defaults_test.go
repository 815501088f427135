package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_NormalizesLevelCase(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestApplyDefaults_NameServer(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, ":8080", cfg.NameServer.ListenAddr)
	assert.Equal(t, 100, cfg.NameServer.LRUSize)
	assert.Equal(t, 16, cfg.NameServer.MaxStorageServers)
	assert.False(t, cfg.NameServer.EnableExec)
}

func TestApplyDefaults_StorageServer(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, ":9001", cfg.StorageServer.ClientFacingAddr)
	assert.Equal(t, ":9002", cfg.StorageServer.NMFacingAddr)
	assert.Equal(t, "/var/lib/dfs/storage", cfg.StorageServer.StorageRoot)
	assert.Equal(t, "/var/lib/dfs/storage/.shadow", cfg.StorageServer.ShadowRoot)
	assert.Equal(t, 10*time.Second, cfg.StorageServer.HeartbeatInterval)
}

func TestApplyDefaults_ShadowRootDerivedFromCustomStorageRoot(t *testing.T) {
	cfg := &Config{StorageServer: StorageServerConfig{StorageRoot: "/data/ss1"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "/data/ss1/.shadow", cfg.StorageServer.ShadowRoot)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		NameServer: NameServerConfig{LRUSize: 500, EnableExec: true},
	}
	ApplyDefaults(cfg)
	assert.Equal(t, 500, cfg.NameServer.LRUSize)
	assert.True(t, cfg.NameServer.EnableExec)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate(cfg))
}
