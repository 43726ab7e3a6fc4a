package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Endpoint != "https://webresolver.nl/api.php" {
		t.Fatalf("unexpected endpoint %q", cfg.Endpoint)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if cfg.RunInterval != 0 {
		t.Fatalf("expected run-once default, got %v", cfg.RunInterval)
	}
	if cfg.EscapeQuery {
		t.Fatalf("expected verbatim query values by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("WEBRESOLVER_API_KEY", "secret")
	t.Setenv("RUN_INTERVAL", "60")
	t.Setenv("ESCAPE_QUERY", "true")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("unexpected api key %q", cfg.APIKey)
	}
	if cfg.RunInterval != time.Minute {
		t.Fatalf("unexpected run interval %v", cfg.RunInterval)
	}
	if !cfg.EscapeQuery {
		t.Fatalf("expected escape_query from env")
	}
}

func TestLoadReadsDotenvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := LoadFrom(file)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	if _, err := LoadFrom(""); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestLoadRejectsNegativeInterval(t *testing.T) {
	t.Setenv("RUN_INTERVAL", "-5")
	if _, err := LoadFrom(""); err == nil {
		t.Fatalf("expected error for negative run interval")
	}
}
