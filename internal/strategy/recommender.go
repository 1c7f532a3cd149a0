package strategy

import (
	"fmt"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// SizingTable maps risk tiers to base allocation fractions of total
// capital, with a global single-position cap.
type SizingTable struct {
	VeryLow   float64
	Low       float64
	Medium    float64
	High      float64
	VeryHigh  float64
	MaxSingle float64
}

// DefaultSizingTable returns the production allocation table.
func DefaultSizingTable() SizingTable {
	return SizingTable{
		VeryLow:   0.25,
		Low:       0.20,
		Medium:    0.15,
		High:      0.10,
		VeryHigh:  0.05,
		MaxSingle: 0.30,
	}
}

// base returns the allocation fraction for a tier; unknown tiers get
// the medium allocation.
func (t SizingTable) base(tier contracts.RiskTier) float64 {
	switch tier {
	case contracts.RiskVeryLow:
		return t.VeryLow
	case contracts.RiskLow:
		return t.Low
	case contracts.RiskMedium:
		return t.Medium
	case contracts.RiskHigh:
		return t.High
	case contracts.RiskVeryHigh:
		return t.VeryHigh
	}
	return t.Medium
}

// confidenceMultipliers scale the base allocation by conviction.
var confidenceMultipliers = map[contracts.Confidence]float64{
	contracts.ConfidenceVeryHigh: 1.3,
	contracts.ConfidenceHigh:     1.1,
	contracts.ConfidenceMedium:   1.0,
	contracts.ConfidenceLow:      0.7,
}

// confidenceAnchors map qualitative confidence to a numeric score so
// independent evidence streams can be blended without any one
// dominating, then mapped back to a label.
var confidenceAnchors = map[contracts.Confidence]float64{
	contracts.ConfidenceLow:      25,
	contracts.ConfidenceMedium:   50,
	contracts.ConfidenceHigh:     75,
	contracts.ConfidenceVeryHigh: 90,
}

// riskConfidenceAdjustments shift the blended confidence by tier.
var riskConfidenceAdjustments = map[contracts.RiskTier]float64{
	contracts.RiskVeryLow:  10,
	contracts.RiskLow:      5,
	contracts.RiskMedium:   0,
	contracts.RiskHigh:     -10,
	contracts.RiskVeryHigh: -20,
}

// Recommender turns a window classification, technical score, and risk
// tier into a final action, a position size, and a blended confidence.
type Recommender struct {
	sizing SizingTable
}

// NewRecommender creates a recommender with the given sizing table.
func NewRecommender(sizing SizingTable) *Recommender {
	return &Recommender{sizing: sizing}
}

// Recommend runs the decision table for one window hit.
func (r *Recommender) Recommend(hit contracts.WindowHit, technicalScore float64, assessment contracts.RiskAssessment) contracts.Recommendation {
	switch hit.Kind {
	case contracts.WindowPreEventLiquidate:
		// Liquidation ahead of a known date is near-certain regardless
		// of technicals; only how soon it lands changes the urgency.
		urgency := contracts.UrgencyMedium
		if hit.DaysOffset <= 1 {
			urgency = contracts.UrgencyHigh
		}
		return contracts.Recommendation{
			Action:     contracts.ActionSellPrepare,
			Urgency:    urgency,
			Confidence: contracts.ConfidenceHigh,
			Reasoning:  "ex-dividend date imminent, prepare to liquidate the position",
		}

	case contracts.WindowPostEventBuy:
		return buyRecommendation(technicalScore, assessment.Tier)
	}

	return contracts.Recommendation{
		Action:     contracts.ActionMonitor,
		Urgency:    contracts.UrgencyNone,
		Confidence: contracts.ConfidenceMedium,
		Reasoning:  "no actionable window, keep monitoring",
	}
}

// buyRecommendation branches on (technical score, risk tier). A high
// risk tier overrides an otherwise decent score.
func buyRecommendation(score float64, tier contracts.RiskTier) contracts.Recommendation {
	lowRisk := tier == contracts.RiskVeryLow || tier == contracts.RiskLow
	highRisk := tier == contracts.RiskHigh || tier == contracts.RiskVeryHigh

	switch {
	case score >= 80 && lowRisk:
		return contracts.Recommendation{
			Action:     contracts.ActionStrongBuy,
			Urgency:    contracts.UrgencyHigh,
			Confidence: contracts.ConfidenceVeryHigh,
			Reasoning:  "strong technicals with contained risk, buy aggressively",
		}
	case score >= 60 && !highRisk:
		return contracts.Recommendation{
			Action:     contracts.ActionBuy,
			Urgency:    contracts.UrgencyMedium,
			Confidence: contracts.ConfidenceHigh,
			Reasoning:  "good technicals, suitable entry",
		}
	case highRisk:
		return contracts.Recommendation{
			Action:     contracts.ActionCautiousBuy,
			Urgency:    contracts.UrgencyLow,
			Confidence: contracts.ConfidenceMedium,
			Reasoning:  "opportunity exists but risk is elevated, small probe only",
		}
	}
	return contracts.Recommendation{
		Action:     contracts.ActionHold,
		Urgency:    contracts.UrgencyNone,
		Confidence: contracts.ConfidenceLow,
		Reasoning:  "technicals or risk conditions not favorable, stay out",
	}
}

// Size computes the suggested allocation: base fraction by risk tier,
// scaled by the window's confidence, re-clamped to the global cap.
func (r *Recommender) Size(assessment contracts.RiskAssessment, confidence contracts.Confidence) contracts.PositionSizing {
	allocation := r.sizing.base(assessment.Tier)
	if allocation > r.sizing.MaxSingle {
		allocation = r.sizing.MaxSingle
	}

	multiplier, ok := confidenceMultipliers[confidence]
	if !ok {
		multiplier = 1.0
	}
	allocation *= multiplier
	if allocation > r.sizing.MaxSingle {
		allocation = r.sizing.MaxSingle
	}

	return contracts.PositionSizing{
		AllocationPct: allocation * 100,
		RiskTier:      assessment.Tier,
		Confidence:    confidence,
		Reasoning:     fmt.Sprintf("base %s-risk allocation scaled by %s confidence", assessment.Tier, confidence),
	}
}

// BlendConfidence combines the window's qualitative confidence with the
// technical score and risk tier: qualitative -> numeric -> qualitative,
// clamped to [0,100] in between.
func (r *Recommender) BlendConfidence(base contracts.Confidence, technicalScore float64, tier contracts.RiskTier) contracts.Confidence {
	score, ok := confidenceAnchors[base]
	if !ok {
		score = 50
	}

	switch {
	case technicalScore >= 80:
		score += 15
	case technicalScore >= 60:
		score += 5
	case technicalScore <= 40:
		score -= 15
	}

	score += riskConfidenceAdjustments[tier]

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	switch {
	case score >= 85:
		return contracts.ConfidenceVeryHigh
	case score >= 65:
		return contracts.ConfidenceHigh
	case score >= 45:
		return contracts.ConfidenceMedium
	}
	return contracts.ConfidenceLow
}
