package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regimebot",
	Short: "A single-instrument regime-classifying trading bot",
	Long: `Regimebot trades one exchange pair on one timeframe. Each tick it
classifies the market regime (consolidation, up, down, chaos), manages the
single open position, and journals every candle, order, and decision to
SQLite so a restart loses nothing.

Commands:
  run      - start the trading loop (paper by default)
  journal  - query the SQLite journal
  version  - print the version`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
