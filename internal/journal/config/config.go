// Package config loads the journal's settings from a YAML file and
// BUJO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds everything the journal needs to run.
type Config struct {
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	SyncMetaPath string `mapstructure:"sync_meta_path" yaml:"sync_meta_path"`
	SyncBaseURL  string `mapstructure:"sync_base_url" yaml:"sync_base_url"`
	SyncToken    string `mapstructure:"sync_token" yaml:"sync_token"`
	LogFile      string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultDir returns the journal's config/data directory, ~/.bujo.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bujo"
	}
	return filepath.Join(home, ".bujo")
}

func defaults(dir string) Config {
	return Config{
		DatabasePath: filepath.Join(dir, "journal.db"),
		SyncMetaPath: filepath.Join(dir, "sync-meta.json"),
		SyncBaseURL:  "",
		SyncToken:    "",
		LogFile:      filepath.Join(dir, "bujo.log"),
		LogLevel:     "info",
	}
}

// Load reads config from dir/config.yaml, with BUJO_* environment
// variables taking precedence. A missing config file is fine; defaults
// apply.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	cfg := defaults(dir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("BUJO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("sync_meta_path", cfg.SyncMetaPath)
	v.SetDefault("sync_base_url", cfg.SyncBaseURL)
	v.SetDefault("sync_token", cfg.SyncToken)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes a commented starter config to dir/config.yaml,
// refusing to overwrite an existing one.
func WriteDefault(dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(defaults(dir))
	if err != nil {
		return path, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
