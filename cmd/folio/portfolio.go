package main

import (
	"fmt"
	"strconv"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/output"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show and trade the simulated portfolio",
	RunE:  runPortfolioShow,
}

var portfolioBuyCmd = &cobra.Command{
	Use:   "buy TICKER QUANTITY",
	Short: "Buy shares",
	Long: `Buy QUANTITY shares of TICKER. Without --price the previous day's
pre-market price is fetched and used.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, args, tradeBuy)
	},
}

var portfolioSellCmd = &cobra.Command{
	Use:   "sell TICKER QUANTITY",
	Short: "Sell shares",
	Long: `Sell QUANTITY shares of TICKER. Selling more than is held fails and
leaves the portfolio unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, args, tradeSell)
	},
}

var tradePrice float64

func init() {
	for _, c := range []*cobra.Command{portfolioBuyCmd, portfolioSellCmd} {
		c.Flags().Float64Var(&tradePrice, "price", 0, "trade price (default: fetched pre-market price)")
		portfolioCmd.AddCommand(c)
	}
	rootCmd.AddCommand(portfolioCmd)
}

type tradeSide int

const (
	tradeBuy tradeSide = iota
	tradeSell
)

func (s tradeSide) String() string {
	if s == tradeSell {
		return "sold"
	}
	return "bought"
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	f, err := formatter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	entries := rt.portfolio.Entries()
	if len(entries) > 0 {
		held := make([]string, len(entries))
		for i, e := range entries {
			held[i] = e.Ticker
		}
		rt.narrow(held)
		rt.app.LoadStockData(cmd.Context())
	}

	return renderAssets(cmd, f, rt.portfolio.Balance().StringFixed(2), rt.app.Assets())
}

func renderAssets(cmd *cobra.Command, f *output.Formatter, balance string, assets app.Assets) error {
	if f.Format != output.FormatTable {
		return f.Print(struct {
			Balance string `json:"balance" yaml:"balance"`
			app.Assets `yaml:",inline"`
		}{balance, assets})
	}

	rows := make([][]string, 0, len(assets.Holdings))
	for _, h := range assets.Holdings {
		rows = append(rows, []string{
			h.Item.Ticker,
			h.Item.Name,
			strconv.FormatInt(h.Quantity, 10),
			formatPrice(h.Price.PreMarket),
			fmt.Sprintf("%+.2f", h.Price.PreMarketChangePercentage()),
		})
	}
	if err := f.Table([]string{"TICKER", "NAME", "QUANTITY", "PRE-MARKET", "CHANGE %"}, rows); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Balance:      %s\n", balance)
	fmt.Fprintf(out, "Total:        %s\n", formatPrice(assets.Total))
	fmt.Fprintf(out, "Change:       %+.2f%%\n", assets.Percent)
	fmt.Fprintf(out, "Today profit: %s\n", formatPrice(assets.TodayProfit))
	return nil
}

func runTrade(cmd *cobra.Command, args []string, side tradeSide) error {
	ticker := args[0]
	quantity, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", args[1], err)
	}

	rt, err := openRuntime(cmd.Context(), ticker)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	price := tradePrice
	atMarket := !cmd.Flags().Changed("price")

	switch {
	case atMarket && side == tradeBuy:
		rt.app.LoadStockData(ctx)
		price, err = rt.app.BuyAtMarket(ctx, ticker, quantity)
	case atMarket:
		rt.app.LoadStockData(ctx)
		price, err = rt.app.SellAtMarket(ctx, ticker, quantity)
	case side == tradeBuy:
		err = rt.app.Buy(ctx, ticker, price, quantity)
	default:
		err = rt.app.Sell(ctx, ticker, price, quantity)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s at %s, balance %s\n",
		side, quantity, ticker, formatPrice(price), rt.portfolio.Balance().StringFixed(2))
	return nil
}
