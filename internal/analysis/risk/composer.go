// Package risk blends four independent risk sub-scores into one 0-100
// composite. Pure calculator: data gathering and decisioning live in
// the layers above.
package risk

import (
	"math"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// Weights configures the four sub-score weights of the composite.
type Weights struct {
	Technical  float64
	Timing     float64
	Volatility float64
	Market     float64
}

// DefaultWeights returns the equal-weight blend.
func DefaultWeights() Weights {
	return Weights{Technical: 0.25, Timing: 0.25, Volatility: 0.25, Market: 0.25}
}

// Valid reports whether the weights sum to 1.0, allowing a small
// floating point error.
func (w Weights) Valid() bool {
	sum := w.Technical + w.Timing + w.Volatility + w.Market
	return sum >= 0.99 && sum <= 1.01
}

const neutralRisk = 50.0

// tierBands maps composite ranges [Min, Max) to tiers, in order. A
// composite at or above the last band's Max falls back to very_high.
var tierBands = []struct {
	Tier contracts.RiskTier
	Min  float64
	Max  float64
}{
	{contracts.RiskVeryLow, 0, 20},
	{contracts.RiskLow, 20, 40},
	{contracts.RiskMedium, 40, 60},
	{contracts.RiskHigh, 60, 80},
	{contracts.RiskVeryHigh, 80, 100},
}

// Composer computes RiskAssessments.
type Composer struct {
	weights Weights
}

// NewComposer creates a composer with the given weights.
func NewComposer(weights Weights) *Composer {
	return &Composer{weights: weights}
}

// Assess blends the four sub-scores for one window hit. Every sub-score
// and the composite are clamped to [0,100]; a fresh assessment is
// produced per call, never cached.
func (c *Composer) Assess(hit contracts.WindowHit, signals []contracts.TechnicalSignal, bars []contracts.PriceBar, profile contracts.ETFProfile) contracts.RiskAssessment {
	breakdown := contracts.RiskBreakdown{
		Technical:  technicalRisk(signals),
		Timing:     timingRisk(hit),
		Volatility: volatilityRisk(bars),
		Market:     marketRisk(profile.Beta),
	}

	composite := breakdown.Technical*c.weights.Technical +
		breakdown.Timing*c.weights.Timing +
		breakdown.Volatility*c.weights.Volatility +
		breakdown.Market*c.weights.Market

	composite = clamp(composite)

	return contracts.RiskAssessment{
		Composite: composite,
		Tier:      TierFor(composite),
		Breakdown: breakdown,
	}
}

// TierFor maps a composite score to its risk tier.
func TierFor(composite float64) contracts.RiskTier {
	for _, band := range tierBands {
		if composite >= band.Min && composite < band.Max {
			return band.Tier
		}
	}
	return contracts.RiskVeryHigh
}

// technicalRisk weighs bearish evidence into risk more heavily than
// bullish evidence reduces it. No signals leaves the baseline.
func technicalRisk(signals []contracts.TechnicalSignal) float64 {
	score := neutralRisk
	for _, s := range signals {
		switch {
		case s.IsBearish():
			score += float64(s.Strength) * 0.3
		case s.IsBullish():
			score -= float64(s.Strength) * 0.2
		}
	}
	return clamp(score)
}

// timingRisk scores how far into its window the hit sits. Buying right
// after the ex-dividend date is the low-risk end; an imminent
// liquidation is inherently riskier.
func timingRisk(hit contracts.WindowHit) float64 {
	score := neutralRisk
	switch hit.Kind {
	case contracts.WindowPostEventBuy:
		switch {
		case hit.DaysOffset <= 3:
			score -= 20
		case hit.DaysOffset <= 7:
			score -= 10
		default:
			score += 15
		}
	case contracts.WindowPreEventLiquidate:
		if hit.DaysOffset <= 3 {
			score += 25
		}
	}
	return clamp(score)
}

// volatilityRisk scores annualized daily-return volatility. Too little
// history keeps the baseline.
func volatilityRisk(bars []contracts.PriceBar) float64 {
	if len(bars) < 10 {
		return neutralRisk
	}

	returns := dailyReturns(bars)
	if len(returns) < 5 {
		return neutralRisk
	}

	annualized := sampleStd(returns) * math.Sqrt(252)

	score := neutralRisk
	switch {
	case annualized > 0.30:
		score += 25
	case annualized > 0.20:
		score += 10
	case annualized < 0.10:
		score -= 15
	}
	return clamp(score)
}

// marketRisk derives purely from the ETF's beta.
func marketRisk(beta float64) float64 {
	score := neutralRisk
	if beta > 1.0 {
		score += (beta - 1.0) * 20
	} else {
		score -= (1.0 - beta) * 10
	}
	return clamp(score)
}

// dailyReturns computes close-to-close percentage changes, skipping
// zero-close bars so a bad record cannot produce Inf.
func dailyReturns(bars []contracts.PriceBar) []float64 {
	var returns []float64
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, bars[i].Close/prev-1)
	}
	return returns
}

// sampleStd is the sample standard deviation (n-1 denominator).
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
