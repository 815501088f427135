package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate(cfg))
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, Validate(cfg))
}

func TestValidate_MissingListenAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NameServer.ListenAddr = ""
	assert.Error(t, Validate(cfg))
}

func TestValidate_ZeroLRUSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NameServer.LRUSize = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_MissingStorageRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageServer.StorageRoot = ""
	assert.Error(t, Validate(cfg))
}

func TestValidate_ZeroHeartbeatInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageServer.HeartbeatInterval = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_MetricsPortOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Port = 70000
	assert.Error(t, Validate(cfg))
}
