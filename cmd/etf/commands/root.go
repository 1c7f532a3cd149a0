package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "etf",
	Short: "Taiwan ETF dividend-capture strategy automation",
	Long: `ETF Strategy Automation CLI

Dividend-capture pipeline for Taiwan high-dividend ETFs: window
detection around ex-dividend dates, technical and risk scoring, and
actionable recommendations.

Usage:
  go run ./cmd/etf [command]

Examples:
  go run ./cmd/etf analyze
  go run ./cmd/etf fetch prices 0056
  go run ./cmd/etf api
  go run ./cmd/etf scheduler start`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default is built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
