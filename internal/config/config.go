// Package config loads and validates runtime configuration for the name
// server, storage server, and client binaries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by the NM and SS binaries.
// A given process only reads the sub-section relevant to its role (NameServer
// or StorageServer), but both sections are parsed from the same file/env
// namespace so a single config file can describe a whole deployment.
//
// Precedence (highest to lowest): environment (DFS_*) > config file >
// defaults. The only CLI flag involved is --config, which picks the file.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	NameServer    NameServerConfig    `mapstructure:"name_server" yaml:"name_server"`
	StorageServer StorageServerConfig `mapstructure:"storage_server" yaml:"storage_server"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the admin HTTP server exposing Prometheus
// metrics and a health check. Shared by NM and SS; each binds its own port.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// NameServerConfig configures the name server process.
type NameServerConfig struct {
	// ListenAddr is the single socket the NM accepts both client and
	// storage-server connections on; the first record's kind discriminates
	// the peer role.
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	// CheckpointPath is the file the metadata store is flushed to and
	// restored from on startup. Empty means start from an empty namespace.
	CheckpointPath string `mapstructure:"checkpoint_path" yaml:"checkpoint_path"`

	// CheckpointInterval is parsed and defaulted but not read by the name
	// server: the metadata store rewrites CheckpointPath after every
	// mutation, and there is no background flush.
	CheckpointInterval time.Duration `mapstructure:"checkpoint_interval" yaml:"checkpoint_interval"`

	// LRUSize bounds the hot-set lookup cache in front of the metadata hash
	// index. Must be positive.
	LRUSize int `mapstructure:"lru_size" validate:"required,gt=0" yaml:"lru_size"`

	// MaxStorageServers bounds the storage-server registry. Registration
	// beyond this limit fails with a registry-exhausted error.
	MaxStorageServers int `mapstructure:"max_storage_servers" validate:"required,gt=0" yaml:"max_storage_servers"`

	// EnableExec gates the exec operation, which runs file contents as a
	// shell command and returns captured stdout. Off by default: file
	// contents are attacker-controlled on any system with write access.
	EnableExec bool `mapstructure:"enable_exec" yaml:"enable_exec"`
}

// StorageServerConfig configures a storage server process.
type StorageServerConfig struct {
	// ClientFacingAddr is the socket clients connect to for read/write/
	// stream/undo after the NM hands out this SS's address.
	ClientFacingAddr string `mapstructure:"client_facing_addr" validate:"required" yaml:"client_facing_addr"`

	// NMFacingAddr is the socket the NM connects to for create/delete
	// forwarding. May be the same address as ClientFacingAddr or a
	// separate one.
	NMFacingAddr string `mapstructure:"nm_facing_addr" validate:"required" yaml:"nm_facing_addr"`

	// NMAddr is the name server's listen address this SS registers with
	// and sends heartbeats to.
	NMAddr string `mapstructure:"nm_addr" validate:"required" yaml:"nm_addr"`

	// StorageRoot is the directory holding one regular file per named
	// file. Filenames may embed "/" to indicate subdirectories, created
	// recursively on write.
	StorageRoot string `mapstructure:"storage_root" validate:"required" yaml:"storage_root"`

	// ShadowRoot is the directory mirroring StorageRoot's layout that
	// holds one-level-deep pre-image copies for undo. Defaults to a
	// ".shadow" subdirectory of StorageRoot when empty.
	ShadowRoot string `mapstructure:"shadow_root" yaml:"shadow_root"`

	// HeartbeatInterval is how often this SS opens a fresh connection to
	// the NM and sends a HEARTBEAT record.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0" yaml:"heartbeat_interval"`
}

var validate = validator.New()

// Load loads configuration from file, environment, and defaults, then
// validates it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Register every key so DFS_* variables apply to keys the file omits.
	keys := map[string]any{}
	zero, err := yaml.Marshal(&Config{})
	if err == nil {
		err = yaml.Unmarshal(zero, &keys)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate config keys: %w", err)
	}
	for k, val := range keys {
		v.SetDefault(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks struct-tag constraints via go-playground/validator.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

// SaveConfig writes cfg to path in YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("DFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook lets config files and environment variables use
// human-readable durations like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
