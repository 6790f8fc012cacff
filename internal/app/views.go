package app

import (
	"github.com/newthinker/folio/internal/core"
	"github.com/shopspring/decimal"
)

// Home is the landing dashboard.
type Home struct {
	Balance   decimal.Decimal `json:"balance"`
	Favorites []core.Quote    `json:"favorites"`
	Popular   []core.Quote    `json:"popular"`
}

// Holding is one portfolio position with its market data.
type Holding struct {
	Item     core.StockItem  `json:"item"`
	Price    core.PricePoint `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Assets summarizes held positions.
//
// Total sums one pre-market price per held ticker and Percent sums their
// change percentages; TodayProfit is Total/100 × Percent.
type Assets struct {
	Holdings    []Holding `json:"holdings"`
	Total       float64   `json:"total"`
	Percent     float64   `json:"percent"`
	TodayProfit float64   `json:"today_profit"`
}

// Statistics lists every ticker with details, largest market cap first.
// Tickers whose price is missing are left out.
func (a *App) Statistics() []core.Quote {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return core.Quotes(core.Listed(a.stockItems), a.stockPrices)
}

// Home builds the landing dashboard.
func (a *App) Home() Home {
	favorites := a.favorites.List()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return Home{
		Balance:   a.portfolio.Balance(),
		Favorites: core.Quotes(favorites, a.stockPrices),
		Popular:   core.Quotes(core.Listed(a.stockItems), a.stockPrices),
	}
}

// Assets builds the holdings summary. Positions whose ticker has no
// details or price in the current cycle are skipped.
func (a *App) Assets() Assets {
	entries := a.portfolio.Entries()

	a.mu.RLock()
	defer a.mu.RUnlock()

	assets := Assets{Holdings: []Holding{}}
	for _, e := range entries {
		item, ok := core.FindItem(a.stockItems, e.Ticker)
		if !ok {
			continue
		}
		p, err := core.FindPrice(a.stockPrices, e.Ticker)
		if err != nil {
			continue
		}
		assets.Holdings = append(assets.Holdings, Holding{Item: item, Price: p, Quantity: e.Quantity})
		assets.Total += p.PreMarket
		assets.Percent += p.PreMarketChangePercentage()
	}
	assets.TodayProfit = assets.Total / 100 * assets.Percent
	return assets
}
