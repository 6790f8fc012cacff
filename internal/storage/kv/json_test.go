package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*Memory
	writeErr error
	readErr  error
}

func (f *failingStore) Write(ctx context.Context, key string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.Write(ctx, key, data)
}

func (f *failingStore) Read(ctx context.Context, key string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Memory.Read(ctx, key)
}

func TestLoadJSON_Missing(t *testing.T) {
	var entries []core.PortfolioEntry
	found, err := LoadJSON(context.Background(), NewMemory(), KeyPortfolio, &entries)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, entries)
}

func TestSaveLoadJSON_RoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	in := []core.PortfolioEntry{{Ticker: "AAPL", Quantity: 3}, {Ticker: "MSFT", Quantity: 1}}
	require.NoError(t, SaveJSON(ctx, store, KeyPortfolio, in))

	var out []core.PortfolioEntry
	found, err := LoadJSON(ctx, store, KeyPortfolio, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestLoadJSON_Corrupt(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	store.Write(ctx, KeyFavorites, []byte("{not json"))

	var items []core.StockItem
	_, err := LoadJSON(ctx, store, KeyFavorites, &items)
	assert.True(t, errors.Is(err, ErrCorrupt), "expected ErrCorrupt, got %v", err)
}

func TestLoadJSON_ReadError(t *testing.T) {
	store := &failingStore{Memory: NewMemory(), readErr: errors.New("disk gone")}

	var items []core.StockItem
	_, err := LoadJSON(context.Background(), store, KeyFavorites, &items)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCorrupt))
}

func TestSaveJSON_WriteError(t *testing.T) {
	store := &failingStore{Memory: NewMemory(), writeErr: errors.New("read-only")}

	err := SaveJSON(context.Background(), store, KeyBalance, 1.5)
	assert.True(t, errors.Is(err, core.ErrStorageFailed))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Type: TypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Type: TypeLocalFS, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFS{}, s)

	_, err = Open(ctx, Config{Type: "floppy"})
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}
