package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsubasarcs/etf-strategy-automation/internal/scheduler"
	"github.com/tsubasarcs/etf-strategy-automation/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- data_collection: daily at 3 PM Taipei (prices and dividend dates)
- daily_analysis:  daily at 3:30 PM Taipei (opportunity evaluation)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately

Example:
  go run ./cmd/etf scheduler start
  go run ./cmd/etf scheduler run data_collection`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runScheduler,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  listJobs,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobNow,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(rt *runtime) (*scheduler.Scheduler, error) {
	s := scheduler.New(rt.log)

	if rt.priceRepo != nil && rt.calRepo != nil {
		collection := jobs.NewDataCollectionJob(
			rt.twseClient, rt.priceRepo, rt.calRepo, rt.strategyCfg, rt.cfg, rt.log,
		)
		if err := s.AddJob(collection); err != nil {
			return nil, err
		}
	} else {
		rt.log.Warn("Database disabled, skipping data_collection job")
	}

	if err := s.AddJob(jobs.NewAnalysisJob(rt.runner, rt.log)); err != nil {
		return nil, err
	}

	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ETF Strategy Scheduler ===")

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	s, err := buildScheduler(rt)
	if err != nil {
		return err
	}

	s.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	s.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	s, err := buildScheduler(rt)
	if err != nil {
		return err
	}

	names := s.JobNames()
	sort.Strings(names)

	fmt.Printf("Registered jobs (%d):\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	s, err := buildScheduler(rt)
	if err != nil {
		return err
	}

	jobName := args[0]
	fmt.Printf("Running job %s...\n", jobName)
	if err := s.RunJob(jobName); err != nil {
		return err
	}

	// RunJob is asynchronous; wait for the result to land in history.
	for {
		time.Sleep(200 * time.Millisecond)
		history, err := s.History(jobName)
		if err != nil {
			return err
		}
		if latest := history.Latest(); latest != nil {
			if !latest.Success {
				return fmt.Errorf("job %s failed: %s", jobName, latest.Error)
			}
			fmt.Printf("✅ Job %s completed in %.2fs\n", jobName, latest.Duration.Seconds())
			return nil
		}
	}
}
