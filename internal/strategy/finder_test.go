package strategy

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

func risingBars(code string, n int) []contracts.PriceBar {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PriceBar, n)
	price := 34.0
	for i := range out {
		price += 0.05
		out[i] = contracts.PriceBar{
			Code:   code,
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
	}
	return out
}

func finderInput() Input {
	return Input{
		Calendar: contracts.DividendCalendar{
			"0056":  {"2025-07-15", "2025-10-15"},
			"00878": {"2025-07-19"},
			"00919": {"2025-07-22"},
		},
		Prices: map[string][]contracts.PriceBar{
			"0056":  risingBars("0056", 60),
			"00878": risingBars("00878", 10), // too short, degrades
			"00919": risingBars("00919", 60),
		},
		Profiles: map[string]contracts.ETFProfile{
			"0056":  {Code: "0056", Name: "Yuanta High Dividend", Priority: 1, Beta: 0.85},
			"00878": {Code: "00878", Name: "Cathay ESG Dividend", Priority: 3, Beta: 0.75},
			"00919": {Code: "00919", Name: "Capital TIP Dividend", Priority: 2, Beta: 0.80},
		},
		Today: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestFindOpportunities_Pipeline(t *testing.T) {
	f := NewDefaultFinder(logger.NewNop())

	opps, err := f.FindOpportunities(context.Background(), finderInput())
	if err != nil {
		t.Fatalf("FindOpportunities() error = %v", err)
	}

	// 0056 day 5 buy, 00878 day 1 buy, 00919 liquidate in 2 days.
	if len(opps) != 3 {
		t.Fatalf("got %d opportunities, want 3", len(opps))
	}

	// Detector ordering preserved: priority 1 (0056), 2 (00919), 3 (00878).
	wantOrder := []string{"0056", "00919", "00878"}
	for i, code := range wantOrder {
		if opps[i].Window.Code != code {
			t.Errorf("opps[%d].Code = %s, want %s", i, opps[i].Window.Code, code)
		}
	}

	// 0056 has 60 bars: fully enhanced.
	first := opps[0]
	if !first.Enhanced {
		t.Error("0056 opportunity should be enhanced")
	}
	if first.Risk == nil || first.Recommendation == nil || first.Sizing == nil {
		t.Fatal("enhanced opportunity missing risk/recommendation/sizing")
	}
	if first.TechnicalScore < 0 || first.TechnicalScore > 100 {
		t.Errorf("TechnicalScore = %v, out of range", first.TechnicalScore)
	}
	if first.Sizing.AllocationPct < 0 || first.Sizing.AllocationPct > 30 {
		t.Errorf("AllocationPct = %v, out of [0,30]", first.Sizing.AllocationPct)
	}

	// 00919 is a liquidate window: SELL_PREPARE with medium urgency
	// (two days out).
	second := opps[1]
	if second.Window.Kind != contracts.WindowPreEventLiquidate {
		t.Fatalf("00919 Kind = %s, want liquidate", second.Window.Kind)
	}
	if second.Recommendation.Action != contracts.ActionSellPrepare {
		t.Errorf("00919 Action = %s, want SELL_PREPARE", second.Recommendation.Action)
	}
	if second.Recommendation.Urgency != contracts.UrgencyMedium {
		t.Errorf("00919 Urgency = %s, want medium", second.Recommendation.Urgency)
	}

	// 00878 has only 10 bars: degraded, window fields only.
	third := opps[2]
	if third.Enhanced {
		t.Error("00878 opportunity should be degraded")
	}
	if third.Risk != nil || third.Recommendation != nil || third.Sizing != nil {
		t.Error("degraded opportunity must carry only window fields")
	}
	if third.Confidence != third.Window.Confidence {
		t.Errorf("degraded confidence = %s, want window confidence %s", third.Confidence, third.Window.Confidence)
	}
}

func TestFindOpportunities_Idempotent(t *testing.T) {
	f := NewDefaultFinder(logger.NewNop())
	in := finderInput()

	first, err := f.FindOpportunities(context.Background(), in)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := f.FindOpportunities(context.Background(), in)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical output ordering and values")
	}
}

func TestFindOpportunities_EmptyInputs(t *testing.T) {
	f := NewDefaultFinder(logger.NewNop())

	opps, err := f.FindOpportunities(context.Background(), Input{
		Today: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("FindOpportunities() error = %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("got %d opportunities from empty inputs, want 0", len(opps))
	}
}

func TestFindOpportunities_MissingPricesDegrade(t *testing.T) {
	f := NewDefaultFinder(logger.NewNop())

	in := finderInput()
	in.Prices = nil // price provider returned nothing

	opps, err := f.FindOpportunities(context.Background(), in)
	if err != nil {
		t.Fatalf("FindOpportunities() error = %v", err)
	}
	if len(opps) != 3 {
		t.Fatalf("got %d opportunities, want 3 (windows still fire)", len(opps))
	}
	for _, opp := range opps {
		if opp.Enhanced {
			t.Errorf("%s: opportunity should be degraded without prices", opp.Window.Code)
		}
	}
}

func TestFindOpportunities_Cancellation(t *testing.T) {
	f := NewDefaultFinder(logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opps, err := f.FindOpportunities(ctx, finderInput())
	if err == nil {
		t.Fatal("expected context error after cancellation")
	}
	if len(opps) != 0 {
		t.Errorf("got %d opportunities after immediate cancel, want 0", len(opps))
	}
}
