// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config owns the two files under the sshvault config directory:
// the application settings (sshvault.yaml, via viper) and the non-secret
// server metadata store (config.toml). The encrypted vault file lives in the
// same directory but belongs to the vault package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// File names inside the config directory.
const (
	SettingsFile = "sshvault.yaml"
	ServersFile  = "config.toml"
	VaultFile    = "encrypted_data.bin"
	HostsFile    = "trusted_hosts"
)

// Settings are the non-server application preferences.
type Settings struct {
	Language       string `mapstructure:"language" yaml:"language"`
	Term           string `mapstructure:"term" yaml:"term"`
	ConnectTimeout int    `mapstructure:"connect_timeout" yaml:"connect_timeout"` // seconds
	ConfigDir      string `mapstructure:"config_dir" yaml:"config_dir"`
	Debug          bool   `mapstructure:"debug" yaml:"debug"`
}

// Dir returns the directory all sshvault state lives in. Order of
// precedence: explicit setting, SSHVAULT_CONFIG_DIR, then the platform user
// config directory plus "sshvault".
func Dir(s Settings) (string, error) {
	if s.ConfigDir != "" {
		return s.ConfigDir, nil
	}
	if env := os.Getenv("SSHVAULT_CONFIG_DIR"); env != "" {
		return env, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(base, "sshvault"), nil
}

// settingsPath returns the full path of the settings file.
func settingsPath(s Settings) (string, error) {
	dir, err := Dir(s)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFile), nil
}

// Load reads the settings with viper: defaults, then the settings file (if
// any), then SSHVAULT_* environment variables, then bound command flags.
func Load(cmd *cobra.Command, explicitFile string) (Settings, error) {
	var s Settings
	v := viper.New()

	v.SetDefault("language", "en")
	v.SetDefault("term", "")
	v.SetDefault("connect_timeout", 10)
	v.SetDefault("config_dir", "")
	v.SetDefault("debug", false)

	v.SetConfigName(strings.TrimSuffix(SettingsFile, filepath.Ext(SettingsFile)))
	v.SetConfigType("yaml")
	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	}
	if dir, err := Dir(Settings{}); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	firstRun := false
	if err := v.ReadInConfig(); err != nil {
		// A missing settings file is normal on first run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return s, err
		}
		firstRun = true
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("sshvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		// Dashed flag names map onto the underscored settings keys.
		v.RegisterAlias("config-dir", "config_dir")
		v.RegisterAlias("connect-timeout", "connect_timeout")
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return s, err
		}
	}

	if err := v.Unmarshal(&s); err != nil {
		return s, err
	}

	// Seed the settings file on first run so users have something to edit.
	if firstRun && explicitFile == "" {
		if err := WriteSettings(s); err != nil {
			return s, fmt.Errorf("could not write default settings: %w", err)
		}
	}
	return s, nil
}

// WriteSettings persists the settings as YAML, creating the config directory
// if needed.
func WriteSettings(s Settings) error {
	path, err := settingsPath(s)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o600)
}
