// SPDX-License-Identifier: MPL-2.0

// Package config loads mlmake's configuration: the resolver's suffix and
// qualifier lists, the binder filename, and output verbosity. Values come
// from defaults, then a TOML config file, then MLMAKE_* environment
// variables, then flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "mlmake"
	// ConfigFileName is the config file basename (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// FormatVersion discriminates per-release source variants; it feeds the
	// default version qualifier.
	FormatVersion = "1"
)

type (
	// Config holds the resolved settings.
	Config struct {
		// Suffixes is the ordered base-suffix trial list. The empty string
		// means the bare object name itself.
		Suffixes []string `mapstructure:"suffixes"`
		// ArchQualifier discriminates per-architecture source variants.
		ArchQualifier string `mapstructure:"arch_qualifier"`
		// VersionQualifier discriminates per-release source variants.
		VersionQualifier string `mapstructure:"version_qualifier"`
		// Binder is the designated filename compiled in place of a directory
		// target.
		Binder string `mapstructure:"binder"`
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}

	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Suffixes:         []string{"", ".sml", ".sig"},
		ArchQualifier:    "." + runtime.GOARCH,
		VersionQualifier: ".v" + FormatVersion,
		Binder:           "ml_bind",
	}
}

// Load reads configuration from the requested source, falling back to
// defaults when no config file exists.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("suffixes", defaults.Suffixes)
	v.SetDefault("arch_qualifier", defaults.ArchQualifier)
	v.SetDefault("version_qualifier", defaults.VersionQualifier)
	v.SetDefault("binder", defaults.Binder)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix("MLMAKE")
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		dir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
			// No config file: defaults apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Binder == "" {
		return errors.New("config: binder must not be empty")
	}
	if len(c.Suffixes) == 0 {
		return errors.New("config: suffixes must list at least one entry")
	}
	return nil
}

// configDirOverride lets tests redirect the config directory without relying
// on HOME, which os.UserHomeDir() does not respect on every platform.
var configDirOverride string

// SetConfigDirOverride sets a custom config directory path for tests.
// Call Reset from test cleanup to restore defaults.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the mlmake configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit options before platform defaults.
func configDirWithOverride(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return ConfigDir()
}
