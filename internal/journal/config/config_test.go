package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabasePath != filepath.Join(dir, "journal.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.SyncBaseURL != "" {
		t.Errorf("SyncBaseURL = %q, want empty by default", cfg.SyncBaseURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "sync_base_url: https://journal.example.com\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncBaseURL != "https://journal.example.com" {
		t.Errorf("SyncBaseURL = %q", cfg.SyncBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// Unset keys keep their defaults.
	if cfg.DatabasePath != filepath.Join(dir, "journal.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("sync_token: from-file\n"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	t.Setenv("BUJO_SYNC_TOKEN", "from-env")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncToken != "from-env" {
		t.Errorf("SyncToken = %q, want env value", cfg.SyncToken)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	if _, err := WriteDefault(dir); err == nil {
		t.Error("expected error overwriting existing config")
	}

	// The written file round-trips.
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load of written config failed: %v", err)
	}
	if cfg.DatabasePath == "" {
		t.Error("written config lost its defaults")
	}
}
