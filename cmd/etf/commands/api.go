package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsubasarcs/etf-strategy-automation/internal/api"
	"github.com/tsubasarcs/etf-strategy-automation/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API and WebSocket push server.

Endpoints:
  GET  /health              - Health check
  GET  /api/opportunities   - Latest analysis results
  POST /api/analyze         - Trigger a fresh analysis run
  GET  /api/prices/{code}   - Daily bar history
  GET  /api/calendar        - Resolved dividend calendar
  GET  /ws                  - Push channel for finished runs

Example:
  go run ./cmd/etf api
  go run ./cmd/etf api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ETF Strategy API Server ===")

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	hub := api.NewHub(rt.log)
	rt.runner.WithBroadcaster(hub)

	var reader handlers.OpportunityReader
	if rt.oppRepo != nil {
		reader = rt.oppRepo
	}

	router := api.NewRouter(
		handlers.NewOpportunitiesHandler(reader, rt.runner, rt.log),
		handlers.NewPricesHandler(rt.prices, rt.log),
		handlers.NewCalendarHandler(rt.chain, rt.log),
		hub,
		rt.log,
	)

	server := api.New(rt.cfg, rt.log, router)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		rt.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
