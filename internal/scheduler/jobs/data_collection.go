package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/internal/external/twse"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategyconfig"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/config"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// PriceWriter persists fetched bars.
type PriceWriter interface {
	SaveBatch(ctx context.Context, bars []contracts.PriceBar) error
}

// CalendarWriter persists fetched ex-dividend dates.
type CalendarWriter interface {
	SaveCalendar(ctx context.Context, calendar contracts.DividendCalendar, source string) error
}

// Announced events are swept from 3 months back to 12 months out,
// matching the exchange's publication horizon.
const (
	calendarMonthsBack  = 3
	calendarMonthsAhead = 12
)

// DataCollectionJob refreshes prices and ex-dividend dates from the
// exchange after each trading day.
type DataCollectionJob struct {
	client    *twse.Client
	prices    PriceWriter
	calendars CalendarWriter
	strategy  *strategyconfig.Config
	config    *config.Config
	logger    *logger.Logger
}

// NewDataCollectionJob creates a new data collection job.
func NewDataCollectionJob(client *twse.Client, prices PriceWriter, calendars CalendarWriter, strategyCfg *strategyconfig.Config, cfg *config.Config, log *logger.Logger) *DataCollectionJob {
	return &DataCollectionJob{
		client:    client,
		prices:    prices,
		calendars: calendars,
		strategy:  strategyCfg,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name.
func (j *DataCollectionJob) Name() string {
	return "data_collection"
}

// Schedule runs daily at 3 PM Taipei, after the exchange publishes
// closing data.
func (j *DataCollectionJob) Schedule() string {
	return "0 0 15 * * *"
}

// Run fetches price history and the dividend calendar for every
// tracked ETF.
func (j *DataCollectionJob) Run(ctx context.Context) error {
	now := time.Now()

	j.logger.Info("Collecting ETF prices")
	for _, code := range j.strategy.Codes() {
		bars, err := j.client.FetchHistory(ctx, code, j.config.TWSE.MonthsBack, now)
		if err != nil {
			return fmt.Errorf("fetch prices for %s: %w", code, err)
		}
		if err := j.prices.SaveBatch(ctx, bars); err != nil {
			return fmt.Errorf("save prices for %s: %w", code, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"etf_code": code,
			"bars":     len(bars),
		}).Info("Prices collected")
	}

	j.logger.Info("Collecting dividend calendar")
	calendar, err := j.client.FetchDividendCalendar(ctx, j.strategy.Codes(), calendarMonthsBack, calendarMonthsAhead, now)
	if err != nil {
		return fmt.Errorf("fetch dividend calendar: %w", err)
	}
	if err := j.calendars.SaveCalendar(ctx, calendar, "twse"); err != nil {
		return fmt.Errorf("save dividend calendar: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"codes": len(calendar),
		"dates": calendar.TotalDates(),
	}).Info("Dividend calendar collected")

	return nil
}
