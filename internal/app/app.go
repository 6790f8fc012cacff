package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/favorites"
	"github.com/newthinker/folio/internal/fetcher"
	"github.com/newthinker/folio/internal/portfolio"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Runner executes one fetch cycle; *fetcher.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, tickers []string, observer fetcher.Observer) fetcher.Result
}

// ProgressRecorder mirrors the loading indicator somewhere observable.
type ProgressRecorder interface {
	SetLoadingProgress(v int)
}

// Options wires an App. Portfolio and Favorites are required.
type Options struct {
	Tickers          []string
	Fetcher          Runner
	Portfolio        *portfolio.Store
	Favorites        *favorites.Store
	ProgressInterval time.Duration
	ProgressCeiling  int
	Recorder         ProgressRecorder
}

// State is a point-in-time copy of everything a presentation layer renders.
type State struct {
	StockItems      []core.StockItem      `json:"stock_items"`
	StockPrices     []core.PricePoint     `json:"stock_prices"`
	IsLoading       bool                  `json:"is_loading"`
	LoadingProgress int                   `json:"loading_progress"`
	Portfolio       []core.PortfolioEntry `json:"portfolio"`
	Balance         decimal.Decimal       `json:"balance"`
	Favorites       []core.StockItem      `json:"favorites"`
}

// App owns the fetched market state and routes commands to the stores.
type App struct {
	tickers   []string
	fetcher   Runner
	portfolio *portfolio.Store
	favorites *favorites.Store
	logger    *zap.Logger

	progressInterval time.Duration
	progressCeiling  int
	recorder         ProgressRecorder

	// loadMu serializes fetch cycles.
	loadMu sync.Mutex

	mu          sync.RWMutex
	stockItems  []core.StockItem
	stockPrices []core.PricePoint
	isLoading   bool
	progress    *fetcher.Progress
	lastCycle   string
	lastLoaded  time.Time
}

// New creates an App over injected stores.
func New(opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		tickers:          append([]string(nil), opts.Tickers...),
		fetcher:          opts.Fetcher,
		portfolio:        opts.Portfolio,
		favorites:        opts.Favorites,
		logger:           logger,
		progressInterval: opts.ProgressInterval,
		progressCeiling:  opts.ProgressCeiling,
		recorder:         opts.Recorder,
		stockItems:       []core.StockItem{},
		stockPrices:      []core.PricePoint{},
	}
}

// Tickers returns the configured ticker universe
func (a *App) Tickers() []string {
	return append([]string(nil), a.tickers...)
}

// LoadStockData runs one fetch cycle and replaces the fetched lists
// wholesale. Details and prices become visible independently as each
// merge completes; the call returns once both have landed.
func (a *App) LoadStockData(ctx context.Context) fetcher.Result {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	progress := fetcher.NewProgress(a.progressInterval, a.progressCeiling, a.setProgress)

	a.mu.Lock()
	if a.progress != nil {
		a.progress.Stop()
	}
	a.progress = progress
	a.isLoading = true
	a.mu.Unlock()

	a.setProgress(0)
	progress.Start()

	result := a.fetcher.Run(ctx, a.tickers, a)

	a.mu.Lock()
	a.lastCycle = result.ID
	a.lastLoaded = time.Now()
	a.mu.Unlock()

	return result
}

// OnDetails implements fetcher.Observer.
func (a *App) OnDetails(items []core.StockItem) {
	a.mu.Lock()
	a.stockItems = items
	a.mu.Unlock()
}

// OnPrices implements fetcher.Observer. Price arrival ends the loading
// phase.
func (a *App) OnPrices(prices []core.PricePoint) {
	a.mu.Lock()
	a.stockPrices = prices
	a.isLoading = false
	progress := a.progress
	a.mu.Unlock()

	if progress != nil {
		progress.Complete()
	}
}

func (a *App) setProgress(v int) {
	if a.recorder != nil {
		a.recorder.SetLoadingProgress(v)
	}
}

// Close stops the progress ticker of the current cycle, if any.
func (a *App) Close() {
	a.mu.Lock()
	progress := a.progress
	a.mu.Unlock()
	if progress != nil {
		progress.Stop()
	}
}

// IsLoading reports whether a fetch cycle is waiting on prices
func (a *App) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.isLoading
}

// LoadingProgress returns the advisory progress percentage
func (a *App) LoadingProgress() int {
	a.mu.RLock()
	progress := a.progress
	a.mu.RUnlock()
	if progress == nil {
		return 0
	}
	return progress.Value()
}

// StockItems returns the last merged detail list, placeholders included
func (a *App) StockItems() []core.StockItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.stockItems)
}

// StockPrices returns the last merged price list
func (a *App) StockPrices() []core.PricePoint {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.stockPrices)
}

// State returns a snapshot of the whole observable state.
func (a *App) State() State {
	a.mu.RLock()
	state := State{
		StockItems:  slices.Clone(a.stockItems),
		StockPrices: slices.Clone(a.stockPrices),
		IsLoading:   a.isLoading,
	}
	progress := a.progress
	a.mu.RUnlock()

	if progress != nil {
		state.LoadingProgress = progress.Value()
	}
	state.Portfolio = a.portfolio.Entries()
	state.Balance = a.portfolio.Balance()
	state.Favorites = a.favorites.List()
	return state
}

// GetStats returns application statistics
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"tickers":     len(a.tickers),
		"listed":      len(core.Listed(a.stockItems)),
		"prices":      len(a.stockPrices),
		"loading":     a.isLoading,
		"last_cycle":  a.lastCycle,
		"last_loaded": a.lastLoaded,
		"positions":   len(a.portfolio.Entries()),
		"favorites":   len(a.favorites.List()),
	}
}

// PriceFor returns the price point for ticker. A ticker without a fetched
// price yields core.ErrPriceUnavailable.
func (a *App) PriceFor(ticker string) (core.PricePoint, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return core.FindPrice(a.stockPrices, ticker)
}

// Buy records a purchase at an explicit price.
func (a *App) Buy(ctx context.Context, ticker string, price float64, quantity int64) error {
	return a.portfolio.Buy(ctx, ticker, price, quantity)
}

// Sell records a sale at an explicit price.
func (a *App) Sell(ctx context.Context, ticker string, price float64, quantity int64) error {
	return a.portfolio.Sell(ctx, ticker, price, quantity)
}

// BuyAtMarket buys at the ticker's pre-market price.
func (a *App) BuyAtMarket(ctx context.Context, ticker string, quantity int64) (float64, error) {
	price, err := a.marketPrice(ticker)
	if err != nil {
		return 0, err
	}
	return price, a.portfolio.Buy(ctx, ticker, price, quantity)
}

// SellAtMarket sells at the ticker's pre-market price.
func (a *App) SellAtMarket(ctx context.Context, ticker string, quantity int64) (float64, error) {
	price, err := a.marketPrice(ticker)
	if err != nil {
		return 0, err
	}
	return price, a.portfolio.Sell(ctx, ticker, price, quantity)
}

// marketPrice refuses placeholders so nothing trades at a zero price.
func (a *App) marketPrice(ticker string) (float64, error) {
	p, err := a.PriceFor(ticker)
	if err != nil {
		return 0, err
	}
	if p.IsEmpty() {
		return 0, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("%s price fetch failed", ticker))
	}
	return p.PreMarket, nil
}

// AddToFavorites stores the current snapshot of ticker.
func (a *App) AddToFavorites(ctx context.Context, ticker string) (core.StockItem, error) {
	a.mu.RLock()
	item, ok := core.FindItem(a.stockItems, ticker)
	a.mu.RUnlock()
	if !ok {
		return core.StockItem{}, core.WrapError(core.ErrTickerNotFound, fmt.Errorf("%q has no details", ticker))
	}
	return item, a.favorites.Add(ctx, item)
}

// RemoveFromFavorites drops ticker from favorites; absent tickers are a no-op.
func (a *App) RemoveFromFavorites(ctx context.Context, ticker string) error {
	return a.favorites.Remove(ctx, core.StockItem{Ticker: ticker})
}

// IsFavorite reports whether ticker is a favorite
func (a *App) IsFavorite(ticker string) bool {
	return a.favorites.IsFavorite(core.StockItem{Ticker: ticker})
}
