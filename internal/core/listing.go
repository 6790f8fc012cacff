package core

import (
	"fmt"
	"sort"
)

// Listed drops placeholders and orders items by market cap, largest first.
func Listed(items []StockItem) []StockItem {
	result := make([]StockItem, 0, len(items))
	for _, item := range items {
		if !item.IsEmpty() {
			result = append(result, item)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MarketCap > result[j].MarketCap
	})
	return result
}

// FindItem returns the first item with the given ticker.
func FindItem(items []StockItem, ticker string) (StockItem, bool) {
	if ticker == "" {
		return StockItem{}, false
	}
	for _, item := range items {
		if item.Ticker == ticker {
			return item, true
		}
	}
	return StockItem{}, false
}

// FindPrice returns the price point for a ticker. The ticker universe may
// list a symbol twice, so the first match wins.
func FindPrice(prices []PricePoint, ticker string) (PricePoint, error) {
	if ticker == "" {
		return PricePoint{}, ErrInvalidTicker
	}
	for _, p := range prices {
		if p.Symbol == ticker {
			return p, nil
		}
	}
	return PricePoint{}, WrapError(ErrPriceUnavailable, fmt.Errorf("no price point for %s", ticker))
}

// Quotes pairs each item with its price point. Items without a price are
// skipped.
func Quotes(items []StockItem, prices []PricePoint) []Quote {
	quotes := make([]Quote, 0, len(items))
	for _, item := range items {
		p, err := FindPrice(prices, item.Ticker)
		if err != nil {
			continue
		}
		quotes = append(quotes, Quote{Item: item, Price: p})
	}
	return quotes
}
