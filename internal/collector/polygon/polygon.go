package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/newthinker/folio/internal/collector"
	"github.com/newthinker/folio/internal/core"
)

const (
	defaultBaseURL = "https://api.polygon.io"
)

// validTicker matches tickers like AAPL, BRK.B and AT&T
var validTicker = regexp.MustCompile(`^[A-Za-z0-9.&\-]{1,12}$`)

// validateTicker checks if a ticker has valid format
func validateTicker(ticker string) error {
	if ticker == "" {
		return core.ErrInvalidTicker
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Polygon implements the Polygon.io reference and open-close collector
type Polygon struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new Polygon collector
func New() *Polygon {
	return &Polygon{
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

func (p *Polygon) Name() string {
	return "polygon"
}

// Init applies cfg. A missing API key is allowed: requests still go out
// and the provider's rejection surfaces as a fetch error.
func (p *Polygon) Init(cfg collector.Config) error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid base url: %q", cfg.BaseURL))
		}
		p.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	p.apiKey = cfg.APIKey
	p.client = &http.Client{Timeout: cfg.Timeout}
	return nil
}

// FetchDetail fetches reference details for a ticker
func (p *Polygon) FetchDetail(ctx context.Context, ticker string) (*core.StockItem, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	var result detailsResponse
	if err := p.get(ctx, p.endpoint("v3", "reference", "tickers", ticker), &result); err != nil {
		return nil, fmt.Errorf("fetching details for %s: %w", ticker, err)
	}
	if result.Results == nil || result.Results.Ticker == "" {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no details for ticker: %s", ticker))
	}

	return result.Results, nil
}

// FetchPrice fetches the open-close session of ticker on date (YYYY-MM-DD)
func (p *Polygon) FetchPrice(ctx context.Context, ticker, date string) (*core.PricePoint, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	var result openCloseResponse
	if err := p.get(ctx, p.endpoint("v1", "open-close", ticker, date), &result); err != nil {
		return nil, fmt.Errorf("fetching open-close for %s on %s: %w", ticker, date, err)
	}
	if result.Symbol == "" {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("no session for %s on %s", ticker, date))
	}

	// Keyed by the requested ticker, not the echoed symbol.
	return &core.PricePoint{
		Symbol:    ticker,
		Open:      result.Open,
		High:      result.High,
		Low:       result.Low,
		Volume:    int64(result.Volume),
		PreMarket: result.PreMarket,
	}, nil
}

// endpoint builds a signed URL; path segments are escaped so tickers such
// as AT&T survive.
func (p *Polygon) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	q := url.Values{}
	q.Set("apiKey", p.apiKey)
	return fmt.Sprintf("%s/%s?%s", p.baseURL, strings.Join(escaped, "/"), q.Encode())
}

func (p *Polygon) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return core.WrapError(core.ErrFetchFailed, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return core.WrapError(core.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, e.describe()))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// Polygon API response types
type detailsResponse struct {
	Status  string          `json:"status"`
	Results *core.StockItem `json:"results"`
}

type openCloseResponse struct {
	Status    string  `json:"status"`
	From      string  `json:"from"`
	Symbol    string  `json:"symbol"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	PreMarket float64 `json:"preMarket"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorResponse) describe() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	case e.Status != "":
		return e.Status
	default:
		return "no error body"
	}
}
