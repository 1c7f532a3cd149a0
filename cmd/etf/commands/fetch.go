package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch exchange data",
	Long: `Fetches data from the Taiwan Stock Exchange.

Subcommands:
  prices [code]  - daily bars for one ETF (or all tracked ETFs)
  calendar       - announced ex-dividend dates

With the database enabled the data is stored; otherwise a summary is
printed.

Example:
  go run ./cmd/etf fetch prices 0056
  go run ./cmd/etf fetch prices
  go run ./cmd/etf fetch calendar`,
}

var fetchPricesCmd = &cobra.Command{
	Use:   "prices [code]",
	Short: "Fetch daily bars",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFetchPrices,
}

var fetchCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Fetch announced ex-dividend dates",
	RunE:  runFetchCalendar,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchPricesCmd)
	fetchCmd.AddCommand(fetchCalendarCmd)
}

func runFetchPrices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	codes := rt.strategyCfg.Codes()
	if len(args) == 1 {
		codes = []string{args[0]}
	}

	now := time.Now()
	for _, code := range codes {
		bars, err := rt.twseClient.FetchHistory(ctx, code, rt.cfg.TWSE.MonthsBack, now)
		if err != nil {
			return fmt.Errorf("fetch prices for %s: %w", code, err)
		}

		if rt.priceRepo != nil {
			if err := rt.priceRepo.SaveBatch(ctx, bars); err != nil {
				return fmt.Errorf("save prices for %s: %w", code, err)
			}
			fmt.Printf("✅ %s: %d bars stored\n", code, len(bars))
		} else {
			fmt.Printf("✅ %s: %d bars fetched (database disabled, not stored)\n", code, len(bars))
		}

		if len(bars) > 0 {
			latest := bars[len(bars)-1]
			fmt.Printf("   latest %s close %.2f volume %d\n",
				latest.Date.Format("2006-01-02"), latest.Close, latest.Volume)
		}
	}
	return nil
}

func runFetchCalendar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	calendar, err := rt.twseClient.FetchDividendCalendar(ctx, rt.strategyCfg.Codes(), 3, 12, time.Now())
	if err != nil {
		return fmt.Errorf("fetch dividend calendar: %w", err)
	}

	if rt.calRepo != nil {
		if err := rt.calRepo.SaveCalendar(ctx, calendar, "twse"); err != nil {
			return fmt.Errorf("save dividend calendar: %w", err)
		}
	}

	fmt.Printf("✅ Dividend calendar: %d ETFs, %d dates\n", len(calendar), calendar.TotalDates())
	for _, code := range calendar.Codes() {
		fmt.Printf("   %s: %v\n", code, calendar[code])
	}
	return nil
}
