package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills zero-valued fields with sensible defaults after a
// config file has been unmarshaled. Explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyNameServerDefaults(&cfg.NameServer)
	applyStorageServerDefaults(&cfg.StorageServer)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyNameServerDefaults(cfg *NameServerConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LRUSize == 0 {
		cfg.LRUSize = 100
	}
	if cfg.MaxStorageServers == 0 {
		cfg.MaxStorageServers = 16
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	// EnableExec stays false unless explicitly set.
}

func applyStorageServerDefaults(cfg *StorageServerConfig) {
	if cfg.ClientFacingAddr == "" {
		cfg.ClientFacingAddr = ":9001"
	}
	if cfg.NMFacingAddr == "" {
		cfg.NMFacingAddr = ":9002"
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "/var/lib/dfs/storage"
	}
	if cfg.ShadowRoot == "" {
		cfg.ShadowRoot = cfg.StorageRoot + "/.shadow"
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 10 * time.Second
	}
}

// DefaultConfig returns a Config with every field set to its default value:
// the values Load fills in for settings that neither the config file nor
// the environment provides.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
