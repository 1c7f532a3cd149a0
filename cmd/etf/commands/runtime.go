package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/risk"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/technical"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/windows"
	"github.com/tsubasarcs/etf-strategy-automation/internal/calendar"
	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/internal/external/twse"
	"github.com/tsubasarcs/etf-strategy-automation/internal/pipeline"
	"github.com/tsubasarcs/etf-strategy-automation/internal/store"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategy"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategyconfig"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/config"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/database"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/httputil"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/redis"
)

// runtime holds the wired components every command draws from.
// Database and Redis are optional; nil fields mean the concern is
// disabled in config.
type runtime struct {
	cfg         *config.Config
	strategyCfg *strategyconfig.Config
	log         *logger.Logger
	db          *database.DB
	redisClient *redis.Client
	twseClient  *twse.Client
	chain       *calendar.Chain
	prices      pipeline.PriceSource
	runner      *pipeline.Runner
	oppRepo     *store.OpportunityRepository
	priceRepo   *store.PriceRepository
	calRepo     *store.CalendarRepository
}

// newRuntime loads config and wires the full pipeline.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	strategyPath := cfg.StrategyConfigPath
	if strategyFile != "" {
		strategyPath = strategyFile
	}
	strategyCfg, err := strategyconfig.LoadOrDefault(strategyPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	if hash, err := strategyconfig.Hash(strategyCfg); err == nil {
		log.WithFields(map[string]interface{}{
			"strategy": strategyCfg.Meta.StrategyID,
			"hash":     hash[:12],
		}).Info("Strategy config loaded")
	}

	rt := &runtime{cfg: cfg, strategyCfg: strategyCfg, log: log}

	httpClient := httputil.New(log, cfg.TWSE.RequestTimeout).WithRateLimit(cfg.TWSE.RatePerSecond)
	rt.twseClient = twse.NewClient(httpClient, log).WithBaseURL(cfg.TWSE.BaseURL)

	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		rt.db = db
		rt.priceRepo = store.NewPriceRepository(db.Pool)
		rt.calRepo = store.NewCalendarRepository(db.Pool)
		rt.oppRepo = store.NewOpportunityRepository(db.Pool)
		log.Info("Connected to database")
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		redisClient = nil
	}
	rt.redisClient = redisClient

	rt.chain = rt.buildCalendarChain()
	rt.prices = rt.buildPriceSource()

	finder := strategy.NewFinder(
		windows.NewDetector(strategyCfg.WindowBounds(), log),
		technical.NewEngine(strategyCfg.TechnicalParams(), log),
		risk.NewComposer(strategyCfg.RiskWeights()),
		strategy.NewRecommender(strategyCfg.SizingTable()),
		log,
	)

	rt.runner = pipeline.NewRunner(strategyCfg, rt.chain, rt.prices, finder, log)
	if rt.oppRepo != nil {
		rt.runner.WithPersister(rt.oppRepo)
	}

	return rt, nil
}

// buildCalendarChain orders the calendar sources: confirmed exchange
// announcements, the exchange's calendar page, then stored dates, then
// pattern predictions.
func (rt *runtime) buildCalendarChain() *calendar.Chain {
	codes := rt.strategyCfg.Codes()

	providers := []calendar.Provider{
		calendar.ProviderFunc{
			ProviderName: "twse",
			Fn: func(ctx context.Context) (contracts.DividendCalendar, error) {
				return rt.twseClient.FetchDividendCalendar(ctx, codes, 3, 12, time.Now())
			},
		},
		calendar.ProviderFunc{
			ProviderName: "twse-html",
			Fn: func(ctx context.Context) (contracts.DividendCalendar, error) {
				return rt.twseClient.FetchDividendCalendarHTML(ctx, codes)
			},
		},
	}

	if rt.calRepo != nil {
		providers = append(providers, calendar.ProviderFunc{
			ProviderName: "store",
			Fn: func(ctx context.Context) (contracts.DividendCalendar, error) {
				return rt.calRepo.GetCalendar(ctx, time.Now().AddDate(0, -1, 0))
			},
		})
	}

	predictor := calendar.NewPredictor(pipeline.Schedules(rt.strategyCfg), rt.log)
	providers = append(providers, predictor.Provider(time.Now))

	return calendar.NewChain(rt.log, providers...)
}

// buildPriceSource prefers stored bars, cached through Redis when
// available, and falls back to live exchange fetches.
func (rt *runtime) buildPriceSource() pipeline.PriceSource {
	if rt.priceRepo != nil {
		if rt.redisClient != nil && rt.redisClient.Enabled() {
			cache := redis.NewCache(rt.redisClient, "etf")
			return store.NewCachedPrices(rt.priceRepo, cache, rt.log)
		}
		return rt.priceRepo
	}

	monthsBack := rt.cfg.TWSE.MonthsBack
	return pipeline.PriceSourceFunc(func(ctx context.Context, code string, _ time.Time) ([]contracts.PriceBar, error) {
		return rt.twseClient.FetchHistory(ctx, code, monthsBack, time.Now())
	})
}

// close releases held connections.
func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redisClient != nil {
		rt.redisClient.Close()
	}
}
