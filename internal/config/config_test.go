package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Expected backend 'file', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != "tasks" {
		t.Errorf("Expected key 'tasks', got '%s'", cfg.Storage.Key)
	}
	if cfg.Server.Addr != "127.0.0.1:3000" {
		t.Errorf("Expected loopback addr, got '%s'", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Key != "tasks" {
		t.Errorf("Expected defaults, got %+v", cfg.Storage)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage:
  backend: sqlite
  path: /tmp/tb.db
display:
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Expected sqlite backend, got '%s'", cfg.Storage.Backend)
	}
	if cfg.StoragePath() != "/tmp/tb.db" {
		t.Errorf("Expected /tmp/tb.db, got '%s'", cfg.StoragePath())
	}
	// Unset keys keep their defaults.
	if cfg.Storage.Key != "tasks" {
		t.Errorf("Expected default key, got '%s'", cfg.Storage.Key)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_STORAGE_BACKEND", "memory")
	t.Setenv("TASKBOARD_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Expected env backend 'memory', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Expected env addr, got '%s'", cfg.Server.Addr)
	}
	if cfg.StoragePath() != "" {
		t.Errorf("Memory backend should have no path, got '%s'", cfg.StoragePath())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"backend", "storage:\n  backend: postgres\n", "storage.backend"},
		{"key", "storage:\n  key: a/b\n", "storage.key"},
		{"timezone", "display:\n  timezone: Mars/Olympus\n", "display.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRawDefersValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: bogus\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}
	if cfg.Storage.Backend != "bogus" {
		t.Errorf("Expected backend bogus, got %q", cfg.Storage.Backend)
	}

	cfg.Storage.Backend = BackendMemory
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected overridden config to validate, got %v", err)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written default failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Round-tripped config differs: %+v", cfg)
	}

	if err := WriteDefault(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestStoragePathDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := DefaultConfig()
	if got := cfg.StoragePath(); got != filepath.Join("/data", AppName) {
		t.Errorf("Unexpected file path %s", got)
	}

	cfg.Storage.Backend = BackendSQLite
	if got := cfg.StoragePath(); got != filepath.Join("/data", AppName, SQLiteFile) {
		t.Errorf("Unexpected sqlite path %s", got)
	}
}

func TestDefaultConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", AppName, ConfigFile) {
		t.Errorf("Unexpected config path %s", got)
	}
}
