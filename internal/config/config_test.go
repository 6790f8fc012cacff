package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/folio/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

market:
  tickers: ["AAPL", "MSFT"]
  batch_size: 5
  progress_interval: 50ms

storage:
  type: redis
  redis:
    addr: "redis:6379"
    db: 2

portfolio:
  buy_settlement: legacy
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Market.Tickers) != 2 || cfg.Market.Tickers[1] != "MSFT" {
		t.Errorf("unexpected tickers %v", cfg.Market.Tickers)
	}
	if cfg.Market.BatchSize != 5 {
		t.Errorf("expected batch size 5, got %d", cfg.Market.BatchSize)
	}
	if cfg.Market.ProgressInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms interval, got %v", cfg.Market.ProgressInterval)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.Redis.DB != 2 {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Portfolio.BuySettlement != "legacy" {
		t.Errorf("expected legacy settlement, got %s", cfg.Portfolio.BuySettlement)
	}
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  port: 9090
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Market.BaseURL != "" {
		t.Errorf("expected provider default base url, got %s", cfg.Market.BaseURL)
	}
	if len(cfg.Market.Tickers) != len(DefaultTickers) {
		t.Errorf("expected default tickers, got %d", len(cfg.Market.Tickers))
	}
	if cfg.Market.ProgressCeiling != 90 {
		t.Errorf("expected ceiling 90, got %d", cfg.Market.ProgressCeiling)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_POLYGON_KEY", "secret")
	cfgPath := writeConfig(t, `
market:
  api_key: "${TEST_POLYGON_KEY}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Market.APIKey != "secret" {
		t.Errorf("expected expanded api key, got %q", cfg.Market.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Market.BatchSize != 20 {
		t.Errorf("expected default batch size 20, got %d", cfg.Market.BatchSize)
	}
	if cfg.Market.ProgressInterval != 200*time.Millisecond {
		t.Errorf("expected 200ms progress interval, got %v", cfg.Market.ProgressInterval)
	}
	if len(DefaultTickers) != 78 {
		t.Errorf("expected 78 default tickers, got %d", len(DefaultTickers))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mutate func(*Config)) Config {
		cfg := Defaults()
		mutate(cfg)
		return *cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid config", valid(func(*Config) {}), nil},
		{"invalid port - zero", valid(func(c *Config) { c.Server.Port = 0 }), core.ErrConfigInvalid},
		{"invalid port - too high", valid(func(c *Config) { c.Server.Port = 70000 }), core.ErrConfigInvalid},
		{"missing provider", valid(func(c *Config) { c.Market.Provider = "" }), core.ErrConfigMissing},
		{"relative base url", valid(func(c *Config) { c.Market.BaseURL = "api.polygon.io" }), core.ErrConfigInvalid},
		{"no tickers", valid(func(c *Config) { c.Market.Tickers = nil }), core.ErrConfigMissing},
		{"negative batch", valid(func(c *Config) { c.Market.BatchSize = -1 }), core.ErrConfigInvalid},
		{"ceiling above 100", valid(func(c *Config) { c.Market.ProgressCeiling = 120 }), core.ErrConfigInvalid},
		{"s3 without bucket", valid(func(c *Config) { c.Storage.Type = "s3" }), core.ErrConfigMissing},
		{"redis without addr", valid(func(c *Config) { c.Storage.Type = "redis"; c.Storage.Redis.Addr = "" }), core.ErrConfigMissing},
		{"unknown storage", valid(func(c *Config) { c.Storage.Type = "sqlite" }), core.ErrConfigInvalid},
		{"unknown settlement", valid(func(c *Config) { c.Portfolio.BuySettlement = "free" }), core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
