package main

import (
	"fmt"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/output"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List and edit favorite tickers",
	RunE:    runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add TICKER",
	Short: "Fetch TICKER's details and add it to favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove TICKER",
	Aliases: []string{"rm"},
	Short:   "Remove TICKER from favorites",
	Args:    cobra.ExactArgs(1),
	RunE:    runFavoritesRemove,
}

func init() {
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	f, err := formatter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	items := rt.favorites.List()
	if len(items) == 0 {
		if f.Format == output.FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet. Add one with 'folio favorites add TICKER'.")
			return nil
		}
		return f.Print([]core.StockItem{})
	}

	tickers := make([]string, len(items))
	for i, item := range items {
		tickers[i] = item.Ticker
	}
	rt.narrow(tickers)
	rt.app.LoadStockData(cmd.Context())

	return renderQuotes(f, rt.app.Home().Favorites)
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	rt, err := openRuntime(cmd.Context(), ticker)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.app.LoadStockData(cmd.Context())
	item, err := rt.app.AddToFavorites(cmd.Context(), ticker)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) to favorites\n", item.Ticker, item.Name)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.app.IsFavorite(ticker) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favorite\n", ticker)
		return nil
	}
	if err := rt.app.RemoveFromFavorites(cmd.Context(), ticker); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %s from favorites\n", ticker)
	return nil
}
