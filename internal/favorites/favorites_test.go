package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apple() core.StockItem {
	return core.StockItem{
		Ticker:    "AAPL",
		Name:      "Apple Inc.",
		MarketCap: 2.7e12,
		Branding:  core.Branding{IconURL: "https://x/icon.png"},
	}
}

func TestNew_Empty(t *testing.T) {
	s, err := New(context.Background(), kv.NewMemory(), nil)
	require.NoError(t, err)
	assert.Empty(t, s.List())
}

func TestAdd_Twice_KeepsOneEntry(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, apple()))
	require.NoError(t, s.Add(ctx, apple()))

	assert.Len(t, s.List(), 1)
}

func TestAdd_UniqueByTickerNotContent(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, apple()))
	renamed := apple()
	renamed.Name = "Apple"
	require.NoError(t, s.Add(ctx, renamed))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Apple Inc.", list[0].Name, "first snapshot is kept")
}

func TestAdd_RejectsPlaceholder(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)

	err := s.Add(context.Background(), core.EmptyStockItem())
	assert.True(t, errors.Is(err, core.ErrInvalidTicker))
	assert.Empty(t, s.List())
}

func TestRemove(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)
	ctx := context.Background()

	s.Add(ctx, apple())
	s.Add(ctx, core.StockItem{Ticker: "MSFT"})
	s.Add(ctx, core.StockItem{Ticker: "IBM"})

	require.NoError(t, s.Remove(ctx, core.StockItem{Ticker: "MSFT"}))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Ticker)
	assert.Equal(t, "IBM", list[1].Ticker)

	// absent is a no-op
	require.NoError(t, s.Remove(ctx, core.StockItem{Ticker: "MSFT"}))
	assert.Len(t, s.List(), 2)
}

func TestIsFavorite(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)
	ctx := context.Background()

	assert.False(t, s.IsFavorite(apple()))
	s.Add(ctx, apple())
	assert.True(t, s.IsFavorite(core.StockItem{Ticker: "AAPL"}))
	assert.False(t, s.IsFavorite(core.EmptyStockItem()))
}

func TestPersistence_RoundTrip(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	s, _ := New(ctx, store, nil)
	s.Add(ctx, apple())
	s.Add(ctx, core.StockItem{Ticker: "MSFT", Name: "Microsoft", Description: "Software"})

	reloaded, err := New(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(t, s.List(), reloaded.List())
}

func TestPersistence_CorruptFallsBackToEmpty(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()
	store.Write(ctx, kv.KeyFavorites, []byte(`{"ticker":`))

	s, err := New(ctx, store, nil)
	require.NoError(t, err)
	assert.Empty(t, s.List())
}

func TestOnSizeChange(t *testing.T) {
	s, _ := New(context.Background(), kv.NewMemory(), nil)
	ctx := context.Background()

	var size int
	s.OnSizeChange(func(n int) { size = n })
	s.Add(ctx, apple())
	s.Add(ctx, core.StockItem{Ticker: "MSFT"})
	assert.Equal(t, 2, size)

	s.Remove(ctx, apple())
	assert.Equal(t, 1, size)
}

func TestProperty_AddIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("adding any sequence keeps tickers unique", prop.ForAll(
		func(tickers []string) bool {
			ctx := context.Background()
			s, _ := New(ctx, kv.NewMemory(), nil)
			for _, ticker := range tickers {
				s.Add(ctx, core.StockItem{Ticker: ticker})
				s.Add(ctx, core.StockItem{Ticker: ticker})
			}

			seen := map[string]bool{}
			for _, item := range s.List() {
				if seen[item.Ticker] {
					return false
				}
				seen[item.Ticker] = true
			}
			for _, ticker := range tickers {
				if !seen[ticker] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("AAPL", "MSFT", "IBM", "T", "F", "GM")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
