package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "addr: \":9090\"\nstorage: sqlite\nsqlite_path: /tmp/x.db\nlog:\n  level: debug\n  format: text\ncors_origins: [\"*\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Storage != StorageSQLite || cfg.SQLitePath != "/tmp/x.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ALIGN_ADDR", ":7070")
	t.Setenv("ALIGN_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ALIGN_COMMIT", "abc123")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Storage != StorageMemory || cfg.Build.Commit != "abc123" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("want 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsUnknownStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: mongo\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown storage")
	}
}

func TestLogger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "text"}}
	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output %q", out)
	}
}
