package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/calendar"
	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategy"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategyconfig"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

type recordingPersister struct {
	runAt time.Time
	saved []contracts.Opportunity
	err   error
}

func (p *recordingPersister) SaveRun(_ context.Context, runAt time.Time, opps []contracts.Opportunity) error {
	p.runAt = runAt
	p.saved = opps
	return p.err
}

type recordingBroadcaster struct {
	pushed []contracts.Opportunity
}

func (b *recordingBroadcaster) BroadcastOpportunities(opps []contracts.Opportunity) {
	b.pushed = opps
}

func staticCalendar(cal contracts.DividendCalendar) *calendar.Chain {
	return calendar.NewChain(logger.NewNop(), calendar.ProviderFunc{
		ProviderName: "static",
		Fn: func(ctx context.Context) (contracts.DividendCalendar, error) {
			return cal, nil
		},
	})
}

func risingBars(code string, n int, end time.Time) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	for i := 0; i < n; i++ {
		price := 30.0 + 0.1*float64(i)
		bars[i] = contracts.PriceBar{
			Code:   code,
			Date:   end.AddDate(0, 0, i-n+1),
			Open:   price,
			High:   price + 0.2,
			Low:    price - 0.2,
			Close:  price,
			Volume: 1_000_000,
		}
	}
	return bars
}

func TestRun(t *testing.T) {
	cfg := strategyconfig.Default()
	today := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)

	chain := staticCalendar(contracts.DividendCalendar{"0056": {"2025-07-16"}})
	prices := PriceSourceFunc(func(_ context.Context, code string, _ time.Time) ([]contracts.PriceBar, error) {
		return risingBars(code, 60, today), nil
	})

	persister := &recordingPersister{}
	broadcaster := &recordingBroadcaster{}

	runner := NewRunner(cfg, chain, prices, strategy.NewDefaultFinder(logger.NewNop()), logger.NewNop()).
		WithPersister(persister).
		WithBroadcaster(broadcaster).
		WithClock(func() time.Time { return today })

	opps, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.Window.Code != "0056" {
		t.Errorf("Code = %s, want 0056", opp.Window.Code)
	}
	if opp.Window.Kind != contracts.WindowPostEventBuy {
		t.Errorf("Kind = %s, want %s", opp.Window.Kind, contracts.WindowPostEventBuy)
	}
	if !opp.Enhanced {
		t.Error("expected enhanced evaluation with 60 bars of history")
	}

	if len(persister.saved) != 1 {
		t.Errorf("persister got %d opportunities", len(persister.saved))
	}
	if len(broadcaster.pushed) != 1 {
		t.Errorf("broadcaster got %d opportunities", len(broadcaster.pushed))
	}
}

func TestRunDegradesPerETFOnPriceFailure(t *testing.T) {
	cfg := strategyconfig.Default()
	today := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)

	chain := staticCalendar(contracts.DividendCalendar{
		"0056":  {"2025-07-16"},
		"00878": {"2025-07-17"},
	})
	prices := PriceSourceFunc(func(_ context.Context, code string, _ time.Time) ([]contracts.PriceBar, error) {
		if code == "00878" {
			return nil, errors.New("storage offline")
		}
		return risingBars(code, 60, today), nil
	})

	runner := NewRunner(cfg, chain, prices, strategy.NewDefaultFinder(logger.NewNop()), logger.NewNop()).
		WithClock(func() time.Time { return today })

	opps, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(opps) != 2 {
		t.Fatalf("expected both windows evaluated, got %d", len(opps))
	}

	for _, opp := range opps {
		switch opp.Window.Code {
		case "0056":
			if !opp.Enhanced {
				t.Error("0056 should be enhanced")
			}
		case "00878":
			if opp.Enhanced {
				t.Error("00878 should degrade without price history")
			}
		}
	}
}

func TestRunPersistErrorDoesNotFailRun(t *testing.T) {
	cfg := strategyconfig.Default()
	today := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)

	chain := staticCalendar(contracts.DividendCalendar{"0056": {"2025-07-16"}})
	prices := PriceSourceFunc(func(_ context.Context, code string, _ time.Time) ([]contracts.PriceBar, error) {
		return nil, nil
	})
	persister := &recordingPersister{err: errors.New("db down")}

	runner := NewRunner(cfg, chain, prices, strategy.NewDefaultFinder(logger.NewNop()), logger.NewNop()).
		WithPersister(persister).
		WithClock(func() time.Time { return today })

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, persistence failures must not fail the run", err)
	}
}

func TestSchedules(t *testing.T) {
	cfg := strategyconfig.Default()
	schedules := Schedules(cfg)

	if len(schedules) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(schedules))
	}
	s := schedules["00878"]
	if s.Day != 20 || len(s.Months) != 4 {
		t.Errorf("00878 schedule = %+v", s)
	}
}
