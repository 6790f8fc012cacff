package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/secrets"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeDetails = map[string]string{
	"AAPL": `{"results":{"ticker":"AAPL","name":"Apple Inc.","market_cap":2700000000000}}`,
	"MSFT": `{"results":{"ticker":"MSFT","name":"Microsoft Corp","market_cap":2500000000000}}`,
}

var fakePrices = map[string]string{
	"AAPL": `{"status":"OK","symbol":"AAPL","open":110,"preMarket":100}`,
	"MSFT": `{"status":"OK","symbol":"MSFT","open":190,"preMarket":200}`,
}

// fakeMarket serves the two provider endpoints for AAPL and MSFT.
func fakeMarket(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		var body string
		var ok bool
		switch {
		case len(parts) == 4 && parts[1] == "reference":
			body, ok = fakeDetails[parts[3]]
		case len(parts) == 4 && parts[1] == "open-close":
			body, ok = fakePrices[parts[2]]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"NOT_FOUND","message":"Data not found."}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	content := fmt.Sprintf(`market:
  base_url: %s
  tickers: [AAPL, MSFT]
  progress_interval: 1ms
storage:
  type: localfs
  path: %s
`, baseURL, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	orig := keyStore
	keyStore = func() secrets.Store { return secrets.NewMockStore() }
	t.Cleanup(func() { keyStore = orig })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFetchCmd_JSON(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "fetch", "-c", cfg, "-o", "json", "MSFT", "AAPL", "NOPE")
	require.NoError(t, err)

	var quotes []core.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAPL", quotes[0].Item.Ticker, "largest market cap first")
	assert.Equal(t, 100.0, quotes[0].Price.PreMarket)
}

func TestFetchCmd_Table(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "fetch", "-c", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "Apple Inc.")
	assert.Contains(t, out, "2.70T")
	assert.Contains(t, out, "+10.00")
}

func TestFetchCmd_BadOutputFormat(t *testing.T) {
	_, err := execute(t, "fetch", "-o", "xml")
	assert.Error(t, err)
}

func TestPortfolio_BuyWithPriceSkipsFetch(t *testing.T) {
	srv, calls := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "portfolio", "buy", "AAPL", "3", "--price", "150", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "bought 3 AAPL at 150.00, balance 450.00")
	assert.Zero(t, calls.Load())
}

func TestPortfolio_BuyAtMarketThenShow(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "portfolio", "buy", "MSFT", "2", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "bought 2 MSFT at 200.00, balance 400.00")

	out, err = execute(t, "portfolio", "-c", cfg, "-o", "json")
	require.NoError(t, err)

	var shown struct {
		Balance  string `json:"balance"`
		Holdings []struct {
			Quantity int64 `json:"quantity"`
		} `json:"holdings"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "400.00", shown.Balance)
	require.Len(t, shown.Holdings, 1)
	assert.Equal(t, int64(2), shown.Holdings[0].Quantity)
	assert.Equal(t, 200.0, shown.Total)
}

func TestPortfolio_SellMoreThanHeld(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "portfolio", "buy", "AAPL", "1", "--price", "10", "-c", cfg)
	require.NoError(t, err)

	_, err = execute(t, "portfolio", "sell", "AAPL", "2", "--price", "10", "-c", cfg)
	assert.True(t, errors.Is(err, core.ErrInsufficientShares), "got %v", err)
}

func TestPortfolio_BuyUnknownTickerAtMarket(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "portfolio", "buy", "NOPE", "1", "-c", cfg)
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable), "got %v", err)
}

func TestPortfolio_InvalidQuantity(t *testing.T) {
	_, err := execute(t, "portfolio", "buy", "AAPL", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quantity")
}

func TestFavorites_AddListRemove(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "favorites", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet")

	out, err = execute(t, "favorites", "add", "MSFT", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "added MSFT (Microsoft Corp)")

	out, err = execute(t, "favorites", "-c", cfg, "-o", "json")
	require.NoError(t, err)
	var quotes []core.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, 200.0, quotes[0].Price.PreMarket)

	out, err = execute(t, "favorites", "rm", "MSFT", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "removed MSFT")

	out, err = execute(t, "favorites", "rm", "MSFT", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "not a favorite")
}

func TestFavorites_AddUnknownTicker(t *testing.T) {
	srv, _ := fakeMarket(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "favorites", "add", "NOPE", "-c", cfg)
	assert.True(t, errors.Is(err, core.ErrTickerNotFound), "got %v", err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "folio dev")
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.7e12, "2.70T"},
		{1.5e9, "1.50B"},
		{3.25e6, "3.25M"},
		{999, "999"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatMarketCap(tt.in); got != tt.want {
			t.Errorf("formatMarketCap(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
