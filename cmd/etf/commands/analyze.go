package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one opportunity analysis pass",
	Long: `Runs the full dividend-capture pipeline once and prints the
results.

Steps:
- Resolve the ex-dividend calendar (exchange, storage, predictions)
- Detect active pre/post event windows
- Score windows with technical indicators and risk
- Emit sized recommendations

Example:
  go run ./cmd/etf analyze
  go run ./cmd/etf analyze --strategy config/strategy.yaml`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ETF Dividend-Capture Analysis ===")

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	started := time.Now()
	opportunities, err := rt.runner.Run(ctx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("analysis run: %w", err)
	}

	printOpportunities(cmd.OutOrStdout(), opportunities)
	fmt.Printf("\n✅ Analysis completed in %.2fs (%d opportunities)\n",
		time.Since(started).Seconds(), len(opportunities))
	return nil
}

func printOpportunities(w io.Writer, opportunities []contracts.Opportunity) {
	if len(opportunities) == 0 {
		fmt.Fprintln(w, "\nNo active dividend windows today.")
		return
	}

	for i, opp := range opportunities {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
		fmt.Fprintf(w, "  #%d  %s  %s\n", i+1, opp.Window.Code, opp.Window.Kind)
		fmt.Fprintf(w, "  Event date : %s (offset %d days)\n",
			opp.Window.EventDate.Format("2006-01-02"), opp.Window.DaysOffset)
		fmt.Fprintf(w, "  Confidence : %s\n", opp.Confidence)

		if opp.Enhanced {
			fmt.Fprintf(w, "  Technical  : %.1f (%d signals)\n", opp.TechnicalScore, len(opp.Signals))
			if opp.Risk != nil {
				fmt.Fprintf(w, "  Risk       : %.1f (%s)\n", opp.Risk.Composite, opp.Risk.Tier)
			}
		} else {
			fmt.Fprintln(w, "  Technical  : insufficient history, window-only evaluation")
		}

		if opp.Recommendation != nil {
			fmt.Fprintf(w, "  Action     : %s (urgency %s)\n",
				opp.Recommendation.Action, opp.Recommendation.Urgency)
		}
		if opp.Sizing != nil {
			// AllocationPct is already in percent.
			fmt.Fprintf(w, "  Sizing     : %.1f%% of portfolio\n", opp.Sizing.AllocationPct)
		}
	}
}
