package strategy

import (
	"context"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/risk"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/technical"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/windows"
	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// Input carries the fully materialized inputs for one evaluation pass.
// The finder is a pure function of these values and performs no I/O.
type Input struct {
	Calendar contracts.DividendCalendar
	Prices   map[string][]contracts.PriceBar
	Profiles map[string]contracts.ETFProfile
	Today    time.Time
}

// Finder is the pipeline entry point: windows, then indicators and
// risk, then the final recommendation, assembled into one Opportunity
// per window hit.
type Finder struct {
	detector    *windows.Detector
	technical   *technical.Engine
	risk        *risk.Composer
	recommender *Recommender
	logger      *logger.Logger
}

// NewFinder wires the pipeline components.
func NewFinder(detector *windows.Detector, engine *technical.Engine, composer *risk.Composer, recommender *Recommender, log *logger.Logger) *Finder {
	return &Finder{
		detector:    detector,
		technical:   engine,
		risk:        composer,
		recommender: recommender,
		logger:      log,
	}
}

// NewDefaultFinder builds a finder with the default parameters.
func NewDefaultFinder(log *logger.Logger) *Finder {
	return NewFinder(
		windows.NewDetector(windows.DefaultBounds(), log),
		technical.NewEngine(technical.DefaultParams(), log),
		risk.NewComposer(risk.DefaultWeights()),
		NewRecommender(DefaultSizingTable()),
		log,
	)
}

// FindOpportunities evaluates every window hit, enhancing each with the
// technical and risk pipeline when enough price history exists and
// degrading gracefully otherwise. The returned slice preserves the
// detector's priority/offset ordering. Cancellation is honored between
// hits; the opportunities collected so far are returned alongside the
// context error.
func (f *Finder) FindOpportunities(ctx context.Context, in Input) ([]contracts.Opportunity, error) {
	hits := f.detector.FindWindows(in.Calendar, in.Profiles, in.Today)

	opportunities := make([]contracts.Opportunity, 0, len(hits))
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return opportunities, err
		}
		opportunities = append(opportunities, f.evaluate(hit, in))
	}

	f.logger.WithFields(map[string]interface{}{
		"hits":          len(hits),
		"opportunities": len(opportunities),
	}).Debug("Opportunity evaluation completed")

	return opportunities, nil
}

// evaluate scores one window hit.
func (f *Finder) evaluate(hit contracts.WindowHit, in Input) contracts.Opportunity {
	bars := in.Prices[hit.Code]
	if len(bars) < f.technical.MinBars() {
		// Insufficient history is expected, not an error: the window
		// fields alone still make a usable record.
		return contracts.Opportunity{
			Window:         hit,
			Enhanced:       false,
			Confidence:     hit.Confidence,
			EvaluationDate: in.Today,
		}
	}

	enriched := f.technical.Compute(bars)
	signals := f.technical.Signals(enriched)
	score := f.technical.Score(enriched)

	profile := contracts.ProfileOr(in.Profiles, hit.Code)
	assessment := f.risk.Assess(hit, signals, bars, profile)

	recommendation := f.recommender.Recommend(hit, score, assessment)
	sizing := f.recommender.Size(assessment, hit.Confidence)
	confidence := f.recommender.BlendConfidence(hit.Confidence, score, assessment.Tier)

	return contracts.Opportunity{
		Window:         hit,
		Enhanced:       true,
		TechnicalScore: score,
		Signals:        signals,
		Risk:           &assessment,
		Recommendation: &recommendation,
		Sizing:         &sizing,
		Confidence:     confidence,
		EvaluationDate: in.Today,
	}
}
