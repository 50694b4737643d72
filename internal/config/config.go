// Package config loads the bot configuration from a JSON5 file with
// environment-variable overrides, and exposes the runtime kill switch.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/titanous/json5"
)

// TelegramConfig configures the Bot API connection.
type TelegramConfig struct {
	Token string `json:"token"`
	Proxy string `json:"proxy,omitempty"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// HealthConfig configures the liveness HTTP endpoint. An empty addr
// disables it.
type HealthConfig struct {
	Addr string `json:"addr,omitempty"`
}

// Config is the full bot configuration.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Database DatabaseConfig `json:"database"`
	Health   HealthConfig   `json:"health"`

	// OwnerID always passes authorization, even when the platform API
	// is down.
	OwnerID int64 `json:"owner_id"`

	// ReactionsEnabled is the process-wide kill switch. Nil means on.
	ReactionsEnabled *bool `json:"reactions_enabled,omitempty"`

	// Palette narrows the reaction emoji set. Entries outside the
	// Telegram-valid set are dropped; an empty result falls back to the
	// full valid set.
	Palette []string `json:"palette,omitempty"`

	// SeedTriggers are baseline triggers active in every chat, on top
	// of per-chat stored ones. Normalized at load.
	SeedTriggers []string `json:"seed_triggers,omitempty"`

	// CommandPrefixes are the leading characters that mark a message as
	// a command; command messages never trigger reactions.
	CommandPrefixes string `json:"command_prefixes,omitempty"`

	// RatePerMinute caps reactions per chat per minute. 0 = no cap.
	RatePerMinute int `json:"rate_per_minute,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database:        DatabaseConfig{Path: "autoreact.db"},
		Health:          HealthConfig{Addr: ":8080"},
		CommandPrefixes: "/!$.#",
		RatePerMinute:   20,
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A
// missing file is not an error; defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. Env vars take
// precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("AUTOREACT_BOT_TOKEN", &c.Telegram.Token)
	envStr("AUTOREACT_PROXY", &c.Telegram.Proxy)
	envStr("AUTOREACT_DB_PATH", &c.Database.Path)
	envStr("AUTOREACT_HEALTH_ADDR", &c.Health.Addr)

	if v := os.Getenv("AUTOREACT_OWNER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.OwnerID = id
		}
	}
	if v := os.Getenv("AUTOREACT_REACTIONS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ReactionsEnabled = &b
		}
	}
}

// ReactionsOn resolves the kill switch default (on when unset).
func (c *Config) ReactionsOn() bool {
	return c.ReactionsEnabled == nil || *c.ReactionsEnabled
}

// Validate checks the fields the bot cannot run without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (or AUTOREACT_BOT_TOKEN)")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// KillSwitch is the process-wide reactions toggle, flipped at runtime
// by the config watcher and read on every inbound message.
type KillSwitch struct {
	on atomic.Bool
}

func NewKillSwitch(on bool) *KillSwitch {
	k := &KillSwitch{}
	k.on.Store(on)
	return k
}

func (k *KillSwitch) On() bool    { return k.on.Load() }
func (k *KillSwitch) Set(on bool) { k.on.Store(on) }
