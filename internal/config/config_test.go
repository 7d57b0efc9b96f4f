package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with an empty user config dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("MENJAVA_API_URL", "http://localhost:8080/api/")
	v := New()

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second || cfg.PollInterval != 30*time.Second {
		t.Errorf("unexpected durations %v %v", cfg.HTTPTimeout, cfg.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info, got %q", cfg.LogLevel)
	}
	if !strings.HasSuffix(cfg.StatePath, "menjava.sqlite3") {
		t.Errorf("unexpected state path %q", cfg.StatePath)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	yaml := "api_url: https://exchange.example.co.ke\nhttp_timeout: 5s\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "menjava.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("MENJAVA_POLL_INTERVAL", "2m")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://exchange.example.co.ke" {
		t.Errorf("expected file api_url, got %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Errorf("expected env override, got %v", cfg.PollInterval)
	}
	level, _ := cfg.Level()
	if level != slog.LevelDebug {
		t.Errorf("expected debug, got %v", level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	os.WriteFile(filepath.Join(dir, "menjava.yaml"), []byte("api_url: https://file.example\n"), 0o644)
	t.Setenv("MENJAVA_API_URL", "https://env.example")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://env.example" {
		t.Errorf("expected env to win, got %q", cfg.APIURL)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIURL:       "http://localhost:8080",
		StatePath:    "state.sqlite3",
		LogLevel:     "info",
		HTTPTimeout:  time.Second,
		PollInterval: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing url", func(c *Config) { c.APIURL = "" }, true},
		{"relative url", func(c *Config) { c.APIURL = "/api" }, true},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://example.com" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"warn level", func(c *Config) { c.LogLevel = "warn" }, false},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"negative poll", func(c *Config) { c.PollInterval = -time.Second }, true},
		{"missing state", func(c *Config) { c.StatePath = "" }, true},
	}

	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error = %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
