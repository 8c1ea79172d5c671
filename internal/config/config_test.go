package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Default()
	want.DBPath = "/tmp/kitchen.db"
	want.WebPort = 9090
	want.SessionSecret = "shh"
	want.Timezone = "Europe/London"

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("KITCHENCHECK_WEB_PORT", "7070")
	t.Setenv("KITCHENCHECK_SESSION_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WebPort != 7070 {
		t.Fatalf("expected port 7070, got %d", cfg.WebPort)
	}
	if cfg.SessionSecret != "from-env" {
		t.Fatalf("expected secret from env, got %q", cfg.SessionSecret)
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("KITCHENCHECK_TIMEZONE=UTC\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("KITCHENCHECK_TIMEZONE", "")
	os.Unsetenv("KITCHENCHECK_TIMEZONE")

	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env"), envPath); err != nil {
		t.Fatalf("load env: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("expected UTC from env file, got %q", cfg.Timezone)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.WebPort = 70000 }},
		{"ttl", func(c *Config) { c.SessionTTL = "soon" }},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"schedule", func(c *Config) { c.OverdueCheck = "every so often" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for %+v", cfg)
			}
		})
	}
}
