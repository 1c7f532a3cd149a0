package main

import (
	"os"

	"github.com/tsubasarcs/etf-strategy-automation/cmd/etf/commands"
)

// main is the entry point for the ETF strategy CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
