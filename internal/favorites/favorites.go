// Package favorites keeps the remembered stock snapshots.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/storage/kv"
	"go.uber.org/zap"
)

// Store is an ordered, unique-by-ticker list of StockItem snapshots.
type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *zap.Logger
	onSize func(int)

	items []core.StockItem
}

// New loads persisted favorites. Absent or undecodable state yields an
// empty list.
func New(ctx context.Context, store kv.Store, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:     store,
		logger: logger,
		onSize: func(int) {},
		items:  []core.StockItem{},
	}

	var items []core.StockItem
	_, err := kv.LoadJSON(ctx, store, kv.KeyFavorites, &items)
	switch {
	case errors.Is(err, kv.ErrCorrupt):
		logger.Warn("discarding unreadable favorites", zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("loading favorites: %w", err)
	default:
		s.items = dedupe(items)
	}
	return s, nil
}

// OnSizeChange registers fn to be told the list length after each change.
func (s *Store) OnSizeChange(fn func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSize = fn
	fn(len(s.items))
}

func dedupe(items []core.StockItem) []core.StockItem {
	result := make([]core.StockItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.IsEmpty() {
			continue
		}
		if _, ok := seen[item.Ticker]; ok {
			continue
		}
		seen[item.Ticker] = struct{}{}
		result = append(result, item)
	}
	return result
}

// List returns a copy of the favorites in insertion order
func (s *Store) List() []core.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.StockItem(nil), s.items...)
}

// IsFavorite reports whether an item with the same ticker is stored
func (s *Store) IsFavorite(item core.StockItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(item.Ticker) >= 0
}

// Add appends item unless its ticker is already present.
func (s *Store) Add(ctx context.Context, item core.StockItem) error {
	if item.IsEmpty() {
		return core.ErrInvalidTicker
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.Ticker) >= 0 {
		return nil
	}

	items := append(append([]core.StockItem(nil), s.items...), item)
	return s.commit(ctx, items)
}

// Remove drops the entry with item's ticker; absent tickers are a no-op.
func (s *Store) Remove(ctx context.Context, item core.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(item.Ticker)
	if i < 0 {
		return nil
	}

	items := make([]core.StockItem, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	return s.commit(ctx, items)
}

// commit persists items and then makes them visible. Caller holds s.mu.
func (s *Store) commit(ctx context.Context, items []core.StockItem) error {
	if err := kv.SaveJSON(ctx, s.kv, kv.KeyFavorites, items); err != nil {
		s.logger.Warn("persisting favorites failed", zap.Error(err))
		return err
	}
	s.items = items
	s.onSize(len(items))
	return nil
}

func (s *Store) indexOf(ticker string) int {
	if ticker == "" {
		return -1
	}
	for i, item := range s.items {
		if item.Ticker == ticker {
			return i
		}
	}
	return -1
}
