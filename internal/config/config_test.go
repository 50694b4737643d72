package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "autoreact.db" {
		t.Fatalf("db path = %q, want default", cfg.Database.Path)
	}
	if !cfg.ReactionsOn() {
		t.Fatal("kill switch must default to on")
	}
	if cfg.CommandPrefixes != "/!$.#" {
		t.Fatalf("command prefixes = %q", cfg.CommandPrefixes)
	}
}

func TestLoadJSON5(t *testing.T) {
	path := writeConfig(t, `{
		// comments are allowed
		telegram: { token: "123:abc" },
		owner_id: 42,
		reactions_enabled: false,
		seed_triggers: ["@Boss"],
		rate_per_minute: 5,
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.OwnerID != 42 {
		t.Fatalf("owner = %d", cfg.OwnerID)
	}
	if cfg.ReactionsOn() {
		t.Fatal("reactions_enabled: false not honored")
	}
	if cfg.RatePerMinute != 5 {
		t.Fatalf("rate = %d", cfg.RatePerMinute)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{ telegram: { token: "file-token" }, owner_id: 1 }`)
	t.Setenv("AUTOREACT_BOT_TOKEN", "env-token")
	t.Setenv("AUTOREACT_OWNER_ID", "99")
	t.Setenv("AUTOREACT_REACTIONS_ENABLED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.OwnerID != 99 {
		t.Fatalf("owner = %d, want 99", cfg.OwnerID)
	}
	if cfg.ReactionsOn() {
		t.Fatal("env kill switch override not honored")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing token must fail validation")
	}
	cfg.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestKillSwitch(t *testing.T) {
	k := NewKillSwitch(true)
	if !k.On() {
		t.Fatal("initial state lost")
	}
	k.Set(false)
	if k.On() {
		t.Fatal("Set(false) not observed")
	}
}
