// Package config loads the localfs store's configuration from a YAML file,
// environment variables, and built-in defaults. The surface is a single
// Store section plus the ambient logging/metrics sections every deployment
// needs regardless of what sits on top of the core package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete on-disk/env configuration for a localfs deployment.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (LOCALFS_*)
//  2. Configuration file (YAML)
//  3. Defaults applied by ApplyDefaults
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls internal/logger's level.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// StoreConfig configures the pkg/localfs.Store this deployment opens,
// mirroring §3's enumerated configuration knobs one field at a time.
type StoreConfig struct {
	// Root is the absolute or relative storage root directory.
	Root string `mapstructure:"root" validate:"required"`

	// ReaderBufferSize is the block size, in bytes, used for streaming
	// downloads. Zero means "use the package default".
	ReaderBufferSize int `mapstructure:"reader_buffer_size" validate:"gte=0"`

	// HardlinkOnCopy enables the hardlink-preferred copy strategy.
	HardlinkOnCopy bool `mapstructure:"hardlink_on_copy"`

	// Synced enables fsync of data and containing directory after
	// create/replace operations.
	Synced bool `mapstructure:"synced"`

	// SyncedAppend opens append channels with the synchronous-write flag.
	SyncedAppend bool `mapstructure:"synced_append"`

	// TempDir overrides the staging directory: a relative value is joined
	// under Root, an absolute value is used as-is (and must still resolve
	// under Root). Empty means "use the package default" (.upload).
	TempDir string `mapstructure:"temp_dir"`

	// Workers sizes the blocking worker pool. Zero means "use the
	// package default".
	Workers int `mapstructure:"workers" validate:"gte=0"`
}

// MetricsConfig controls the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns on Prometheus metrics collection for the store.
	Enabled bool `mapstructure:"enabled"`

	// Listen is the address the /metrics HTTP endpoint binds to, only
	// used when Enabled is true.
	Listen string `mapstructure:"listen"`
}

// Load reads configuration from configPath (or the default search path
// when empty), applies environment overrides and defaults, and validates
// the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(v, &cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("LOCALFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows about, so every key is
	// bound explicitly to let LOCALFS_* variables work without a config file.
	for _, key := range []string{
		"logging.level",
		"store.root", "store.reader_buffer_size", "store.hardlink_on_copy",
		"store.synced", "store.synced_append", "store.temp_dir", "store.workers",
		"metrics.enabled", "metrics.listen",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/localfs, falling back to
// ~/.config/localfs, or "." if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "localfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "localfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
