package jobs

import (
	"context"
	"fmt"

	"github.com/tsubasarcs/etf-strategy-automation/internal/pipeline"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// AnalysisJob runs the full opportunity evaluation after the daily
// data collection has landed.
type AnalysisJob struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewAnalysisJob creates a new analysis job.
func NewAnalysisJob(runner *pipeline.Runner, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{runner: runner, logger: log}
}

// Name returns the job name.
func (j *AnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule runs daily at 3:30 PM Taipei, half an hour after data
// collection.
func (j *AnalysisJob) Schedule() string {
	return "0 30 15 * * *"
}

// Run executes one analysis pass.
func (j *AnalysisJob) Run(ctx context.Context) error {
	opportunities, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	j.logger.WithField("opportunities", len(opportunities)).Info("Scheduled analysis completed")
	return nil
}
