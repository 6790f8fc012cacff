// Package portfolio keeps the simulated share ledger and cash balance.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/storage/kv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Settlement selects how a buy moves the balance.
type Settlement string

const (
	// SettlementPriced adds price × quantity on buy, mirroring sell.
	SettlementPriced Settlement = "priced"
	// SettlementLegacy adds the bare quantity on buy and ignores price.
	SettlementLegacy Settlement = "legacy"
)

// ParseSettlement validates a configured settlement name. Empty means priced.
func ParseSettlement(s string) (Settlement, error) {
	switch Settlement(s) {
	case "", SettlementPriced:
		return SettlementPriced, nil
	case SettlementLegacy:
		return SettlementLegacy, nil
	default:
		return "", core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown buy settlement %q", s))
	}
}

// Trade sides
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Recorder observes trades and ledger size.
type Recorder interface {
	RecordTrade(side string, ok bool)
	SetPositions(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordTrade(string, bool) {}
func (nopRecorder) SetPositions(int)         {}

// Option configures a Store
type Option func(*Store)

// WithSettlement sets the buy settlement rule
func WithSettlement(s Settlement) Option {
	return func(st *Store) { st.settlement = s }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l
		}
	}
}

// WithRecorder sets the trade recorder
func WithRecorder(r Recorder) Option {
	return func(st *Store) {
		if r != nil {
			st.recorder = r
		}
	}
}

// Store is the portfolio ledger. All access goes through its mutex; every
// successful mutation is written to the backing key-value store before it
// becomes visible.
type Store struct {
	mu         sync.Mutex
	kv         kv.Store
	settlement Settlement
	logger     *zap.Logger
	recorder   Recorder

	entries []core.PortfolioEntry
	balance decimal.Decimal
}

// New loads the persisted ledger from store. Absent or undecodable state
// yields an empty ledger with a zero balance.
func New(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:         store,
		settlement: SettlementPriced,
		logger:     zap.NewNop(),
		recorder:   nopRecorder{},
		entries:    []core.PortfolioEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	s.recorder.SetPositions(len(s.entries))
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var entries []core.PortfolioEntry
	_, err := kv.LoadJSON(ctx, s.kv, kv.KeyPortfolio, &entries)
	switch {
	case errors.Is(err, kv.ErrCorrupt):
		s.logger.Warn("discarding unreadable portfolio", zap.Error(err))
	case err != nil:
		return fmt.Errorf("loading portfolio: %w", err)
	default:
		s.entries = normalize(entries)
	}

	var balance decimal.Decimal
	_, err = kv.LoadJSON(ctx, s.kv, kv.KeyBalance, &balance)
	switch {
	case errors.Is(err, kv.ErrCorrupt):
		s.logger.Warn("discarding unreadable balance", zap.Error(err))
	case err != nil:
		return fmt.Errorf("loading balance: %w", err)
	default:
		s.balance = balance
	}
	return nil
}

// normalize drops empty or non-positive entries and merges duplicates so
// each ticker appears once. A duplicate that would overflow is dropped.
func normalize(entries []core.PortfolioEntry) []core.PortfolioEntry {
	result := make([]core.PortfolioEntry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Ticker == "" || e.Quantity <= 0 {
			continue
		}
		if i, ok := index[e.Ticker]; ok {
			if e.Quantity <= math.MaxInt64-result[i].Quantity {
				result[i].Quantity += e.Quantity
			}
			continue
		}
		index[e.Ticker] = len(result)
		result = append(result, e)
	}
	return result
}

// Settlement returns the active buy settlement rule
func (s *Store) Settlement() Settlement {
	return s.settlement
}

// Entries returns a copy of the ledger in insertion order
func (s *Store) Entries() []core.PortfolioEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PortfolioEntry(nil), s.entries...)
}

// Balance returns the cash balance
func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Quantity returns the held quantity of ticker, 0 when not held
func (s *Store) Quantity(ticker string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(ticker); i >= 0 {
		return s.entries[i].Quantity
	}
	return 0
}

// Buy adds quantity shares of ticker at price.
func (s *Store) Buy(ctx context.Context, ticker string, price float64, quantity int64) error {
	if err := validate(ticker, price, quantity); err != nil {
		s.recorder.RecordTrade(SideBuy, false)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append([]core.PortfolioEntry(nil), s.entries...)
	if i := indexOf(entries, ticker); i >= 0 {
		if held := entries[i].Quantity; quantity > math.MaxInt64-held {
			s.recorder.RecordTrade(SideBuy, false)
			return core.WrapError(core.ErrInvalidQuantity,
				fmt.Errorf("%s: holding %d more on top of %d overflows", ticker, quantity, held))
		}
		entries[i].Quantity += quantity
	} else {
		entries = append(entries, core.PortfolioEntry{Ticker: ticker, Quantity: quantity})
	}

	var amount decimal.Decimal
	switch s.settlement {
	case SettlementLegacy:
		amount = decimal.NewFromInt(quantity)
	default:
		amount = decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))
	}
	balance := s.balance.Add(amount)

	if err := s.commit(ctx, entries, balance); err != nil {
		s.recorder.RecordTrade(SideBuy, false)
		return err
	}

	s.recorder.RecordTrade(SideBuy, true)
	s.logger.Debug("bought",
		zap.String("ticker", ticker),
		zap.Float64("price", price),
		zap.Int64("quantity", quantity),
		zap.String("balance", balance.String()),
	)
	return nil
}

// Sell removes quantity shares of ticker at price. Selling more than is
// held fails with core.ErrInsufficientShares and changes nothing.
func (s *Store) Sell(ctx context.Context, ticker string, price float64, quantity int64) error {
	if err := validate(ticker, price, quantity); err != nil {
		s.recorder.RecordTrade(SideSell, false)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ticker)
	var held int64
	if i >= 0 {
		held = s.entries[i].Quantity
	}
	if held < quantity {
		s.recorder.RecordTrade(SideSell, false)
		s.logger.Info("sell rejected",
			zap.String("ticker", ticker),
			zap.Int64("held", held),
			zap.Int64("requested", quantity),
		)
		return core.WrapError(core.ErrInsufficientShares,
			fmt.Errorf("%s: held %d, requested %d", ticker, held, quantity))
	}

	entries := append([]core.PortfolioEntry(nil), s.entries...)
	entries[i].Quantity -= quantity
	if entries[i].Quantity == 0 {
		entries = append(entries[:i], entries[i+1:]...)
	}

	amount := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))
	balance := s.balance.Sub(amount)

	if err := s.commit(ctx, entries, balance); err != nil {
		s.recorder.RecordTrade(SideSell, false)
		return err
	}

	s.recorder.RecordTrade(SideSell, true)
	s.logger.Debug("sold",
		zap.String("ticker", ticker),
		zap.Float64("price", price),
		zap.Int64("quantity", quantity),
		zap.String("balance", balance.String()),
	)
	return nil
}

// commit persists the next state and then makes it visible. On a partial
// write the previous ledger is written back. Caller holds s.mu.
func (s *Store) commit(ctx context.Context, entries []core.PortfolioEntry, balance decimal.Decimal) error {
	if err := kv.SaveJSON(ctx, s.kv, kv.KeyPortfolio, entries); err != nil {
		s.logger.Warn("persisting portfolio failed", zap.Error(err))
		return err
	}
	if err := kv.SaveJSON(ctx, s.kv, kv.KeyBalance, balance); err != nil {
		s.logger.Warn("persisting balance failed", zap.Error(err))
		if rerr := kv.SaveJSON(ctx, s.kv, kv.KeyPortfolio, s.entries); rerr != nil {
			s.logger.Error("restoring portfolio failed", zap.Error(rerr))
		}
		return err
	}

	s.entries = entries
	s.balance = balance
	s.recorder.SetPositions(len(entries))
	return nil
}

func (s *Store) indexOf(ticker string) int {
	return indexOf(s.entries, ticker)
}

func indexOf(entries []core.PortfolioEntry, ticker string) int {
	for i, e := range entries {
		if e.Ticker == ticker {
			return i
		}
	}
	return -1
}

func validate(ticker string, price float64, quantity int64) error {
	if ticker == "" {
		return core.ErrInvalidTicker
	}
	if quantity <= 0 {
		return core.WrapError(core.ErrInvalidQuantity, fmt.Errorf("got %d", quantity))
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return core.WrapError(core.ErrInvalidPrice, fmt.Errorf("got %f", price))
	}
	return nil
}
