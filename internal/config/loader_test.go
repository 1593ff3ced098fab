package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("server port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Mode != "serve" {
		t.Errorf("mode = %q, want serve", cfg.Mode)
	}
	if cfg.Orders.CreateLimitPerMin != 30 {
		t.Errorf("create limit = %d, want 30", cfg.Orders.CreateLimitPerMin)
	}
	if cfg.Orders.LockTTL.Duration != 5*time.Second {
		t.Errorf("lock ttl = %s, want 5s", cfg.Orders.LockTTL.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadDecodesFile(t *testing.T) {
	path := writeConfigFile(t, `
mode = "full"
log_level = "debug"

[server]
port = 9090

[orders]
create_limit_per_min = 5
lock_ttl = "10s"

[archive]
enabled = true
retention_days = 30
interval = "1h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "full" {
		t.Errorf("mode = %q, want full", cfg.Mode)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Orders.LockTTL.Duration != 10*time.Second {
		t.Errorf("lock ttl = %s, want 10s", cfg.Orders.LockTTL.Duration)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Interval.Duration != time.Hour {
		t.Errorf("archive = %+v, want enabled with 1h interval", cfg.Archive)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("postgres host = %q, want localhost", cfg.Postgres.Host)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = 9090
`)

	t.Setenv("MARKETD_SERVER_PORT", "7777")
	t.Setenv("MARKETD_POSTGRES_PASSWORD", "env-secret")
	t.Setenv("MARKETD_ORDERS_LOCK_TTL", "30s")
	t.Setenv("MARKETD_NOTIFY_EVENTS", "order_accepted, order_rejected")
	t.Setenv("MARKETD_ARCHIVE_ENABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("server port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.Postgres.Password != "env-secret" {
		t.Errorf("postgres password = %q, want env-secret", cfg.Postgres.Password)
	}
	if cfg.Orders.LockTTL.Duration != 30*time.Second {
		t.Errorf("lock ttl = %s, want 30s", cfg.Orders.LockTTL.Duration)
	}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[0] != "order_accepted" || cfg.Notify.Events[1] != "order_rejected" {
		t.Errorf("notify events = %v, want [order_accepted order_rejected]", cfg.Notify.Events)
	}
	if !cfg.Archive.Enabled {
		t.Error("archive not enabled by env override")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load succeeded for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad mode", func(c *Config) { c.Mode = "batch" }, "unknown mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log_level"},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "server: port"},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis: addr"},
		{"zero lock ttl", func(c *Config) { c.Orders.LockTTL.Duration = 0 }, "lock_ttl"},
		{
			"archive enabled without bucket",
			func(c *Config) {
				c.Archive.Enabled = true
				c.S3.Bucket = ""
			},
			"s3: bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}

	t.Run("dsn replaces host fields", func(t *testing.T) {
		cfg := Defaults()
		cfg.Postgres.DSN = "postgres://u:p@db:5432/marketd"
		cfg.Postgres.Host = ""
		cfg.Postgres.Port = 0
		cfg.Postgres.Database = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil when dsn is set", err)
		}
	})
}
