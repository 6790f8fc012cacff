package core

// Branding holds the logo and icon artwork of a company
type Branding struct {
	LogoURL string `json:"logo_url"`
	IconURL string `json:"icon_url"`
}

// StockItem is the reference snapshot of a listed company.
// Identity is the ticker; an item with an empty ticker is a placeholder.
type StockItem struct {
	Ticker          string   `json:"ticker"`
	Name            string   `json:"name"`
	Market          string   `json:"market"`
	Locale          string   `json:"locale"`
	PrimaryExchange string   `json:"primary_exchange"`
	Type            string   `json:"type"`
	MarketCap       float64  `json:"market_cap"`
	PhoneNumber     string   `json:"phone_number"`
	Description     string   `json:"description"`
	HomepageURL     string   `json:"homepage_url"`
	Branding        Branding `json:"branding"`
}

// EmptyStockItem returns the placeholder used when a detail fetch fails.
func EmptyStockItem() StockItem {
	return StockItem{}
}

// IsEmpty reports whether the item is a placeholder
func (s StockItem) IsEmpty() bool {
	return s.Ticker == ""
}

// PricePoint is the open/close snapshot of one trading session
type PricePoint struct {
	Symbol    string  `json:"symbol"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    int64   `json:"volume"`
	PreMarket float64 `json:"preMarket"`
}

// EmptyPricePoint returns the placeholder used when a price fetch fails.
// It keeps the symbol so lookups by ticker still find it.
func EmptyPricePoint(symbol string) PricePoint {
	return PricePoint{Symbol: symbol}
}

// IsEmpty reports whether the point carries no session data
func (p PricePoint) IsEmpty() bool {
	return p.Open == 0 && p.High == 0 && p.Low == 0 && p.Volume == 0 && p.PreMarket == 0
}

// PreMarketChangePercentage returns (open - preMarket) / preMarket * 100,
// or 0 when preMarket is exactly 0.
func (p PricePoint) PreMarketChangePercentage() float64 {
	if p.PreMarket == 0 {
		return 0
	}
	return (p.Open - p.PreMarket) / p.PreMarket * 100
}

// PortfolioEntry is a held quantity of one ticker
type PortfolioEntry struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// Quote pairs a company snapshot with its latest session.
type Quote struct {
	Item  StockItem  `json:"item"`
	Price PricePoint `json:"price"`
}

// ChangePercentage is the pre-market change of the quote.
func (q Quote) ChangePercentage() float64 {
	return q.Price.PreMarketChangePercentage()
}

// IsUp reports whether the quote moved up before the open
func (q Quote) IsUp() bool {
	return q.ChangePercentage() > 0
}
