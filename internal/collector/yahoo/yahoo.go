package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/newthinker/folio/internal/collector"
	"github.com/newthinker/folio/internal/core"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// validSymbol matches symbols like AAPL, BRK-B and AT&T
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9.&\-]{1,12}$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.ErrInvalidTicker
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo implements a keyless collector over the Yahoo Finance chart API.
// Items carry no market capitalization or branding.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo collector
func New() *Yahoo {
	return &Yahoo{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) Init(cfg collector.Config) error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid base url: %q", cfg.BaseURL))
		}
		y.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		y.client = &http.Client{Timeout: cfg.Timeout}
	}
	return nil
}

// toYahooSymbol converts class shares to Yahoo's dash form: BRK.B -> BRK-B
func toYahooSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}

// FetchDetail builds a StockItem from the chart metadata of the last session
func (y *Yahoo) FetchDetail(ctx context.Context, ticker string) (*core.StockItem, error) {
	if err := validateSymbol(ticker); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", "1d")

	r, err := y.chart(ctx, ticker, q)
	if err != nil {
		return nil, fmt.Errorf("fetching details for %s: %w", ticker, err)
	}

	meta := r.Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	return &core.StockItem{
		Ticker:          ticker,
		Name:            name,
		Market:          "stocks",
		Locale:          "us",
		PrimaryExchange: meta.ExchangeName,
		Type:            meta.InstrumentType,
	}, nil
}

// FetchPrice fetches the daily bar of ticker on date (YYYY-MM-DD). The
// previous session's close stands in for the pre-market price.
func (y *Yahoo) FetchPrice(ctx context.Context, ticker, date string) (*core.PricePoint, error) {
	if err := validateSymbol(ticker); err != nil {
		return nil, err
	}
	day, err := time.Parse(collector.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(day.Unix()))
	q.Set("period2", fmt.Sprint(day.AddDate(0, 0, 1).Unix()))

	r, err := y.chart(ctx, ticker, q)
	if err != nil {
		return nil, fmt.Errorf("fetching chart for %s on %s: %w", ticker, date, err)
	}

	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no session for %s on %s", ticker, date))
	}
	quotes := r.Indicators.Quote[0]
	for i := range r.Timestamp {
		if at(quotes.Open, i) == nil {
			continue // Skip missing data
		}
		p := &core.PricePoint{
			Symbol:    ticker,
			Open:      *quotes.Open[i],
			High:      value(at(quotes.High, i)),
			Low:       value(at(quotes.Low, i)),
			PreMarket: r.Meta.ChartPreviousClose,
		}
		if v := atInt(quotes.Volume, i); v != nil {
			p.Volume = *v
		}
		return p, nil
	}

	return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no session for %s on %s", ticker, date))
}

func (y *Yahoo) chart(ctx context.Context, ticker string, q url.Values) (*chartResult, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(toYahooSymbol(ticker)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var result chartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("decoding response: %w", decodeErr))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no data for symbol: %s", ticker))
	}

	return &result.Chart.Result[0], nil
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func atInt(s []*int64, i int) *int64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	ExchangeName       string  `json:"exchangeName"`
	InstrumentType     string  `json:"instrumentType"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
