package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	debug        bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - stock market browser and simulated portfolio",
	Long: `folio fetches company details and previous-day prices for a fixed list
of US tickers, and keeps a simulated portfolio and a favorites list on top.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
