package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/core"
	"github.com/spf13/viper"
)

// DefaultTickers is the ticker universe fetched when none is configured.
// UPS appears twice; price lookups take the first match.
var DefaultTickers = []string{
	"MSFT", "UPS", "AAA", "ABT", "IBM", "ACN", "ADDYY", "AIG", "ALLE", "AMZN",
	"AAL", "ARMK", "CNC", "CVS", "DARDEN", "LMT", "DAL", "F", "GM", "GDDY",
	"GME", "GOOG", "GRUB", "T", "TJX", "TM", "TRIP", "TSLA", "AAPL", "ADS",
	"AT&T", "BAX", "BDX", "B", "BXS", "BEST", "BBY", "LOW", "LYFT", "MMM",
	"MCD", "META", "MAR", "NKE", "NFLX", "NOC", "ORCL", "PEP", "PG", "POST",
	"PM", "PSTG", "PXD", "RCL", "RTX", "RIVN", "SPG", "HES", "HBI", "HCA",
	"HD", "HRB", "HON", "JCI", "JPM", "JNJ", "K", "KSS", "KR", "LKQ",
	"UNP", "UPS", "V", "VLO", "VZ", "WMT", "XOM", "YUM",
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Market    MarketConfig    `mapstructure:"market"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// MarketConfig selects the market data provider and the fetch cycle shape.
type MarketConfig struct {
	Provider string `mapstructure:"provider"` // "polygon" or "yahoo"
	// BaseURL overrides the provider's default endpoint.
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Tickers          []string      `mapstructure:"tickers"`
	BatchSize        int           `mapstructure:"batch_size"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	ProgressCeiling  int           `mapstructure:"progress_ceiling"`
}

type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "localfs", "s3", "redis" or "memory"
	Path  string      `mapstructure:"path"` // For localfs
	S3    S3Config    `mapstructure:"s3"`
	Redis RedisConfig `mapstructure:"redis"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// PortfolioConfig holds ledger settings.
type PortfolioConfig struct {
	// BuySettlement is "priced" (price × quantity) or "legacy" (quantity).
	BuySettlement string `mapstructure:"buy_settlement"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Market: MarketConfig{
			Provider:         "polygon",
			Tickers:          append([]string(nil), DefaultTickers...),
			BatchSize:        20,
			Timeout:          30 * time.Second,
			ProgressInterval: 200 * time.Millisecond,
			ProgressCeiling:  90,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "~/.folio",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "folio",
			},
		},
		Portfolio: PortfolioConfig{
			BuySettlement: "priced",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Market validation
	if c.Market.Provider == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("market provider required"))
	}
	if c.Market.BaseURL != "" {
		if u, err := url.Parse(c.Market.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("market base_url must be an absolute URL, got %q", c.Market.BaseURL))
		}
	}
	if len(c.Market.Tickers) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("market tickers cannot be empty"))
	}
	if c.Market.BatchSize < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch_size cannot be negative, got %d", c.Market.BatchSize))
	}
	if c.Market.ProgressCeiling < 0 || c.Market.ProgressCeiling > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("progress_ceiling must be between 0 and 100, got %d", c.Market.ProgressCeiling))
	}

	// Storage validation
	switch c.Storage.Type {
	case "", "localfs", "memory":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("redis addr required when storage type is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	switch c.Portfolio.BuySettlement {
	case "", "priced", "legacy":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_settlement must be priced or legacy, got %q", c.Portfolio.BuySettlement))
	}

	return nil
}
