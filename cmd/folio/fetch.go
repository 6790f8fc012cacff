package main

import (
	"fmt"
	"strconv"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/output"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [TICKER...]",
	Short: "Run one fetch cycle and print the statistics table",
	Long: `Fetch company details and previous-day prices for the configured tickers,
or for the tickers given as arguments, and print them largest market cap first.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	f, err := formatter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context(), args...)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.app.LoadStockData(cmd.Context())
	return renderQuotes(f, rt.app.Statistics())
}

var quoteHeaders = []string{"TICKER", "NAME", "MARKET CAP", "OPEN", "PRE-MARKET", "CHANGE %"}

func quoteRow(q core.Quote) []string {
	return []string{
		q.Item.Ticker,
		q.Item.Name,
		formatMarketCap(q.Item.MarketCap),
		formatPrice(q.Price.Open),
		formatPrice(q.Price.PreMarket),
		fmt.Sprintf("%+.2f", q.ChangePercentage()),
	}
}

func renderQuotes(f *output.Formatter, quotes []core.Quote) error {
	if f.Format != output.FormatTable {
		return f.Print(quotes)
	}
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, quoteRow(q))
	}
	return f.Table(quoteHeaders, rows)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
