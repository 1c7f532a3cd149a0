package pipeline

import (
	"context"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/calendar"
	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategy"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategyconfig"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// PriceSource reads daily bars for one ETF from a date onward.
type PriceSource interface {
	GetHistory(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error)
}

// PriceSourceFunc adapts a function into a PriceSource.
type PriceSourceFunc func(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error)

func (f PriceSourceFunc) GetHistory(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error) {
	return f(ctx, code, from)
}

// Persister stores the result of one analysis run.
type Persister interface {
	SaveRun(ctx context.Context, runAt time.Time, opportunities []contracts.Opportunity) error
}

// Broadcaster pushes a finished run to connected consumers.
type Broadcaster interface {
	BroadcastOpportunities(opportunities []contracts.Opportunity)
}

// historyMonths bounds how much price history feeds the indicators.
const historyMonths = 6

// Runner assembles a full analysis run: calendar resolution, price
// gathering, opportunity evaluation, then optional persistence and
// push. Persister and Broadcaster may be nil.
type Runner struct {
	cfg         *strategyconfig.Config
	chain       *calendar.Chain
	prices      PriceSource
	finder      *strategy.Finder
	persister   Persister
	broadcaster Broadcaster
	logger      *logger.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewRunner wires a runner. The calendar chain and price source are
// required; persistence and broadcast are optional.
func NewRunner(cfg *strategyconfig.Config, chain *calendar.Chain, prices PriceSource, finder *strategy.Finder, log *logger.Logger) *Runner {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Runner{
		cfg:    cfg,
		chain:  chain,
		prices: prices,
		finder: finder,
		logger: log,
		loc:    loc,
		now:    time.Now,
	}
}

// WithPersister stores each run through p.
func (r *Runner) WithPersister(p Persister) *Runner {
	r.persister = p
	return r
}

// WithBroadcaster pushes each run through b.
func (r *Runner) WithBroadcaster(b Broadcaster) *Runner {
	r.broadcaster = b
	return r
}

// WithClock overrides the time source. Used by tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one analysis pass and returns the evaluated
// opportunities.
func (r *Runner) Run(ctx context.Context) ([]contracts.Opportunity, error) {
	started := r.now().In(r.loc)

	cal := r.chain.Resolve(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from := started.AddDate(0, -historyMonths, 0)
	prices := make(map[string][]contracts.PriceBar, len(r.cfg.ETFs))
	for _, code := range r.cfg.Codes() {
		bars, err := r.prices.GetHistory(ctx, code, from)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One ETF's missing history degrades that ETF only.
			r.logger.WithError(err).WithField("etf_code", code).
				Warn("Price history unavailable")
			continue
		}
		prices[code] = bars
	}

	opportunities, err := r.finder.FindOpportunities(ctx, strategy.Input{
		Calendar: cal,
		Prices:   prices,
		Profiles: r.cfg.Profiles(),
		Today:    started,
	})
	if err != nil {
		return opportunities, err
	}

	if r.persister != nil {
		if err := r.persister.SaveRun(ctx, started, opportunities); err != nil {
			r.logger.WithError(err).Error("Persisting analysis run failed")
		}
	}
	if r.broadcaster != nil {
		r.broadcaster.BroadcastOpportunities(opportunities)
	}

	r.logger.WithFields(map[string]interface{}{
		"opportunities": len(opportunities),
		"elapsed":       time.Since(started).String(),
	}).Info("Analysis run completed")

	return opportunities, nil
}

// Schedules extracts the payout patterns for the calendar predictor.
func Schedules(cfg *strategyconfig.Config) map[string]calendar.Schedule {
	schedules := make(map[string]calendar.Schedule, len(cfg.ETFs))
	for _, e := range cfg.ETFs {
		schedules[e.Code] = calendar.Schedule{Months: e.DividendMonths, Day: e.DividendDay}
	}
	return schedules
}
