package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults must load without a config file: %v", err)
	}

	if cfg.Server.Listen != ":8081" {
		t.Fatalf("unexpected listen default: %s", cfg.Server.Listen)
	}
	if cfg.Engine.AdapterTimeout != 15*time.Second {
		t.Fatalf("unexpected adapter timeout default: %s", cfg.Engine.AdapterTimeout)
	}
	if cfg.Cache.Backend != "" {
		t.Fatalf("caching must be off by default, got %q", cfg.Cache.Backend)
	}
	if cfg.Providers.Akash.BaseURL == "" {
		t.Fatal("provider URLs must have defaults")
	}
	if cfg.Providers.XCache.Region != "us-east-1" {
		t.Fatalf("unexpected xcache region default: %s", cfg.Providers.XCache.Region)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  listen: ":9090"
cache:
  backend: memory
  ttl: 1m
providers:
  akash:
    base_url: "http://localhost:1234"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Fatalf("file value not applied: %s", cfg.Server.Listen)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != time.Minute {
		t.Fatalf("cache settings not applied: %+v", cfg.Cache)
	}
	if cfg.Providers.Akash.BaseURL != "http://localhost:1234" {
		t.Fatalf("provider override not applied: %s", cfg.Providers.Akash.BaseURL)
	}
	// Untouched settings keep their defaults.
	if cfg.Providers.Arweave.PriceURL == "" {
		t.Fatal("defaults must survive partial config files")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("load defaults: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown cache backend must be rejected")
	}

	cfg = base()
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("redis backend without an address must be rejected")
	}

	cfg = base()
	cfg.Engine.RequestTimeout = time.Second
	cfg.Engine.AdapterTimeout = 10 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("request timeout shorter than adapter timeout must be rejected")
	}

	cfg = base()
	cfg.Server.Listen = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty listen address must be rejected")
	}
}
