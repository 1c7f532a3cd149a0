package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

func TestPrintOpportunities_SizingIsAlreadyPercent(t *testing.T) {
	opp := contracts.Opportunity{
		Window: contracts.WindowHit{
			Code:       "0056",
			Kind:       contracts.WindowPostEventBuy,
			EventDate:  time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC),
			DaysOffset: 2,
		},
		Enhanced:   true,
		Confidence: contracts.ConfidenceHigh,
		Sizing: &contracts.PositionSizing{
			AllocationPct: 22,
			RiskTier:      contracts.RiskLow,
			Confidence:    contracts.ConfidenceHigh,
		},
	}

	var buf bytes.Buffer
	printOpportunities(&buf, []contracts.Opportunity{opp})

	out := buf.String()
	if !strings.Contains(out, "Sizing     : 22.0% of portfolio") {
		t.Errorf("output missing 22.0%% sizing line:\n%s", out)
	}
	if strings.Contains(out, "2200.0%") {
		t.Errorf("sizing scaled twice:\n%s", out)
	}
}

func TestPrintOpportunities_Empty(t *testing.T) {
	var buf bytes.Buffer
	printOpportunities(&buf, nil)

	if !strings.Contains(buf.String(), "No active dividend windows") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
