package strategy

import (
	"math"
	"testing"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

func assessmentWithTier(tier contracts.RiskTier) contracts.RiskAssessment {
	return contracts.RiskAssessment{Tier: tier}
}

func TestRecommend_BuyDecisionTable(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())
	hit := contracts.WindowHit{Kind: contracts.WindowPostEventBuy, DaysOffset: 2}

	tests := []struct {
		name       string
		score      float64
		tier       contracts.RiskTier
		wantAction contracts.Action
		wantUrg    contracts.Urgency
		wantConf   contracts.Confidence
	}{
		{"high score low risk", 85, contracts.RiskLow, contracts.ActionStrongBuy, contracts.UrgencyHigh, contracts.ConfidenceVeryHigh},
		{"high score very low risk", 80, contracts.RiskVeryLow, contracts.ActionStrongBuy, contracts.UrgencyHigh, contracts.ConfidenceVeryHigh},
		{"high score medium risk downgrades to buy", 85, contracts.RiskMedium, contracts.ActionBuy, contracts.UrgencyMedium, contracts.ConfidenceHigh},
		{"decent score medium risk", 65, contracts.RiskMedium, contracts.ActionBuy, contracts.UrgencyMedium, contracts.ConfidenceHigh},
		{"score 60 boundary", 60, contracts.RiskLow, contracts.ActionBuy, contracts.UrgencyMedium, contracts.ConfidenceHigh},
		{"good score but high risk overrides", 85, contracts.RiskHigh, contracts.ActionCautiousBuy, contracts.UrgencyLow, contracts.ConfidenceMedium},
		{"very high risk", 30, contracts.RiskVeryHigh, contracts.ActionCautiousBuy, contracts.UrgencyLow, contracts.ConfidenceMedium},
		{"weak score moderate risk holds", 55, contracts.RiskMedium, contracts.ActionHold, contracts.UrgencyNone, contracts.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recommend(hit, tt.score, assessmentWithTier(tt.tier))
			if got.Action != tt.wantAction {
				t.Errorf("Action = %s, want %s", got.Action, tt.wantAction)
			}
			if got.Urgency != tt.wantUrg {
				t.Errorf("Urgency = %s, want %s", got.Urgency, tt.wantUrg)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %s, want %s", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestRecommend_ScoreMonotonicity(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())
	hit := contracts.WindowHit{Kind: contracts.WindowPostEventBuy, DaysOffset: 2}

	// Action strength for comparison: a higher technical score with the
	// tier held fixed must never downgrade the action.
	rank := map[contracts.Action]int{
		contracts.ActionHold:        0,
		contracts.ActionCautiousBuy: 1,
		contracts.ActionBuy:         2,
		contracts.ActionStrongBuy:   3,
	}

	tiers := []contracts.RiskTier{
		contracts.RiskVeryLow, contracts.RiskLow, contracts.RiskMedium,
		contracts.RiskHigh, contracts.RiskVeryHigh,
	}
	for _, tier := range tiers {
		prev := -1
		for score := 0.0; score <= 100; score += 5 {
			action := r.Recommend(hit, score, assessmentWithTier(tier)).Action
			if rank[action] < prev {
				t.Errorf("tier %s: action downgraded to %s at score %v", tier, action, score)
			}
			prev = rank[action]
		}
	}
}

func TestRecommend_SellPrepareUrgency(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())

	tests := []struct {
		daysTo  int
		wantUrg contracts.Urgency
	}{
		{0, contracts.UrgencyHigh},
		{1, contracts.UrgencyHigh},
		{2, contracts.UrgencyMedium},
		{3, contracts.UrgencyMedium},
	}

	for _, tt := range tests {
		hit := contracts.WindowHit{Kind: contracts.WindowPreEventLiquidate, DaysOffset: tt.daysTo}
		got := r.Recommend(hit, 90, assessmentWithTier(contracts.RiskVeryLow))
		if got.Action != contracts.ActionSellPrepare {
			t.Errorf("daysTo=%d: Action = %s, want SELL_PREPARE", tt.daysTo, got.Action)
		}
		if got.Urgency != tt.wantUrg {
			t.Errorf("daysTo=%d: Urgency = %s, want %s", tt.daysTo, got.Urgency, tt.wantUrg)
		}
		if got.Confidence != contracts.ConfidenceHigh {
			t.Errorf("daysTo=%d: Confidence = %s, want high", tt.daysTo, got.Confidence)
		}
	}
}

func TestRecommend_UnknownWindowMonitors(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())
	hit := contracts.WindowHit{Kind: contracts.WindowKind("SOMETHING_ELSE")}

	got := r.Recommend(hit, 90, assessmentWithTier(contracts.RiskVeryLow))
	if got.Action != contracts.ActionMonitor {
		t.Errorf("Action = %s, want MONITOR", got.Action)
	}
	if got.Urgency != contracts.UrgencyNone {
		t.Errorf("Urgency = %s, want none", got.Urgency)
	}
}

func TestSize(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())

	tests := []struct {
		name       string
		tier       contracts.RiskTier
		confidence contracts.Confidence
		wantPct    float64
	}{
		{"very low risk with very high confidence hits the cap", contracts.RiskVeryLow, contracts.ConfidenceVeryHigh, 30}, // 25 * 1.3 = 32.5 -> 30
		{"low risk high confidence", contracts.RiskLow, contracts.ConfidenceHigh, 22},                                     // 20 * 1.1
		{"medium risk medium confidence", contracts.RiskMedium, contracts.ConfidenceMedium, 15},
		{"very high risk low confidence", contracts.RiskVeryHigh, contracts.ConfidenceLow, 3.5}, // 5 * 0.7
		{"unknown confidence gets no multiplier", contracts.RiskMedium, contracts.Confidence("??"), 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Size(assessmentWithTier(tt.tier), tt.confidence)
			if math.Abs(got.AllocationPct-tt.wantPct) > 1e-9 {
				t.Errorf("AllocationPct = %v, want %v", got.AllocationPct, tt.wantPct)
			}
			if got.RiskTier != tt.tier {
				t.Errorf("RiskTier = %s, want %s", got.RiskTier, tt.tier)
			}
		})
	}
}

func TestBlendConfidence(t *testing.T) {
	r := NewRecommender(DefaultSizingTable())

	tests := []struct {
		name  string
		base  contracts.Confidence
		score float64
		tier  contracts.RiskTier
		want  contracts.Confidence
	}{
		// 75 + 15 + 10 = 100 -> very_high
		{"high base, strong score, very low risk", contracts.ConfidenceHigh, 85, contracts.RiskVeryLow, contracts.ConfidenceVeryHigh},
		// 50 + 5 + 0 = 55 -> medium
		{"medium base, decent score, medium risk", contracts.ConfidenceMedium, 65, contracts.RiskMedium, contracts.ConfidenceMedium},
		// 50 + 15 + 5 = 70 -> high
		{"medium base, strong score, low risk", contracts.ConfidenceMedium, 85, contracts.RiskLow, contracts.ConfidenceHigh},
		// 25 - 15 - 20 = -10 -> clamp 0 -> low
		{"weak everything clamps at the floor", contracts.ConfidenceLow, 30, contracts.RiskVeryHigh, contracts.ConfidenceLow},
		// 90 + 15 + 10 = 115 -> clamp 100 -> very_high
		{"strong everything clamps at the ceiling", contracts.ConfidenceVeryHigh, 95, contracts.RiskVeryLow, contracts.ConfidenceVeryHigh},
		// middle score adds nothing: 75 + 0 - 10 = 65 -> high (boundary)
		{"threshold boundary at 65", contracts.ConfidenceHigh, 50, contracts.RiskHigh, contracts.ConfidenceHigh},
		// unknown base anchors at 50: 50 + 5 + 0 = 55 -> medium
		{"unknown base anchors neutral", contracts.Confidence("??"), 65, contracts.RiskMedium, contracts.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.BlendConfidence(tt.base, tt.score, tt.tier); got != tt.want {
				t.Errorf("BlendConfidence() = %s, want %s", got, tt.want)
			}
		})
	}
}
