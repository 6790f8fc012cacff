// Package collector defines the market data provider contract and the
// plumbing that picks and degrades providers.
package collector

import (
	"context"
	"time"

	"github.com/newthinker/folio/internal/core"
)

// Config is handed to a provider's Init.
type Config struct {
	// BaseURL empty means the provider's public endpoint.
	BaseURL string
	APIKey  string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// Collector is one upstream market data provider. Both fetches return
// errors wrapping core.ErrFetchFailed; callers decide how to degrade.
type Collector interface {
	Name() string
	Init(cfg Config) error

	// FetchDetail returns the company details for ticker.
	FetchDetail(ctx context.Context, ticker string) (*core.StockItem, error)
	// FetchPrice returns the daily bar for ticker on date (DateLayout).
	FetchPrice(ctx context.Context, ticker, date string) (*core.PricePoint, error)
}
