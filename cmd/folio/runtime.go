package main

import (
	"context"
	"fmt"
	"io"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/collector"
	"github.com/newthinker/folio/internal/collector/polygon"
	"github.com/newthinker/folio/internal/collector/yahoo"
	"github.com/newthinker/folio/internal/config"
	"github.com/newthinker/folio/internal/favorites"
	"github.com/newthinker/folio/internal/fetcher"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/portfolio"
	"github.com/newthinker/folio/internal/secrets"
	"github.com/newthinker/folio/internal/storage/kv"
	"go.uber.org/zap"
)

// runtime is everything a command needs, built from one config.
type runtime struct {
	cfg       *config.Config
	log       *zap.Logger
	metrics   *metrics.Registry
	store     kv.Store
	source    *collector.Fallback
	portfolio *portfolio.Store
	favorites *favorites.Store
	app       *app.App
	appOpts   app.Options
}

// loadConfig reads --config, or falls back to defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func storageConfig(cfg config.StorageConfig) kv.Config {
	return kv.Config{
		Type: cfg.Type,
		Path: cfg.Path,
		S3: kv.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		},
		Redis: kv.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
	}
}

// newRuntime wires storage, the market data source and the app. tickers
// overrides the configured universe when non-empty.
func newRuntime(ctx context.Context, cfg *config.Config, keys secrets.Store, log *zap.Logger, tickers ...string) (*runtime, error) {
	reg := metrics.NewRegistry()

	store, err := kv.Open(ctx, storageConfig(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	settlement, err := portfolio.ParseSettlement(cfg.Portfolio.BuySettlement)
	if err != nil {
		return nil, err
	}
	ledger, err := portfolio.New(ctx, store,
		portfolio.WithSettlement(settlement),
		portfolio.WithLogger(log),
		portfolio.WithRecorder(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}

	favs, err := favorites.New(ctx, store, log)
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}
	favs.OnSizeChange(reg.SetFavorites)
	reg.SetFavorites(len(favs.List()))

	apiKey, err := secrets.APIKey(keys, cfg.Market.APIKey)
	if err != nil {
		log.Warn("reading api key from keyring failed, using configured key", zap.Error(err))
	}
	if apiKey == "" && cfg.Market.Provider == "polygon" {
		log.Warn("no market data api key set; run 'folio configure' or set " + secrets.EnvAPIKey)
	}

	collectors := collector.NewRegistry()
	collectors.Register(polygon.New())
	collectors.Register(yahoo.New())
	c, err := collectors.Open(cfg.Market.Provider, collector.Config{
		BaseURL: cfg.Market.BaseURL,
		APIKey:  apiKey,
		Timeout: cfg.Market.Timeout,
	})
	if err != nil {
		return nil, err
	}
	source := collector.NewFallback(c, reg, log)

	if len(tickers) == 0 {
		tickers = cfg.Market.Tickers
	}
	orchestrator := fetcher.New(source, fetcher.Config{
		BatchSize: cfg.Market.BatchSize,
		Recorder:  reg,
	}, log)

	opts := app.Options{
		Tickers:          tickers,
		Fetcher:          orchestrator,
		Portfolio:        ledger,
		Favorites:        favs,
		ProgressInterval: cfg.Market.ProgressInterval,
		ProgressCeiling:  cfg.Market.ProgressCeiling,
		Recorder:         reg,
	}

	return &runtime{
		cfg:       cfg,
		log:       log,
		metrics:   reg,
		store:     store,
		source:    source,
		portfolio: ledger,
		favorites: favs,
		app:       app.New(opts, log),
		appOpts:   opts,
	}, nil
}

// narrow replaces the app with one that fetches only tickers. The stores
// are shared.
func (r *runtime) narrow(tickers []string) {
	r.app.Close()
	opts := r.appOpts
	opts.Tickers = tickers
	r.app = app.New(opts, r.log)
}

// Close stops the app and releases the storage backend.
func (r *runtime) Close() {
	r.app.Close()
	if closer, ok := r.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			r.log.Warn("closing storage", zap.Error(err))
		}
	}
}
