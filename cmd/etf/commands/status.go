package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and connectivity status",
	Long: `Prints the loaded configuration, tracked ETFs, and the state
of optional backends (database, Redis).

Example:
  go run ./cmd/etf status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ETF Strategy Status ===")

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Printf("Environment : %s\n", rt.cfg.Env)
	fmt.Printf("Strategy    : %s (%s)\n", rt.strategyCfg.Meta.StrategyID, rt.strategyCfg.Meta.Version)
	fmt.Printf("Tracked ETFs: %d\n", len(rt.strategyCfg.ETFs))
	for _, e := range rt.strategyCfg.ETFs {
		fmt.Printf("  %-6s %s (priority %d, beta %.2f)\n", e.Code, e.Name, e.Priority, e.Beta)
	}

	if rt.db != nil {
		if err := rt.db.Ping(ctx); err != nil {
			fmt.Printf("Database    : unreachable (%v)\n", err)
		} else {
			fmt.Println("Database    : connected")
		}
	} else {
		fmt.Println("Database    : disabled")
	}

	if rt.redisClient != nil && rt.redisClient.Enabled() {
		fmt.Println("Redis       : enabled")
	} else {
		fmt.Println("Redis       : disabled")
	}

	started := time.Now()
	calendar := rt.chain.Resolve(ctx)
	fmt.Printf("Calendar    : %d ETFs, %d dates (resolved in %.2fs)\n",
		len(calendar), calendar.TotalDates(), time.Since(started).Seconds())

	return nil
}
