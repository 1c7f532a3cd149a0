package contracts

import "time"

// WindowKind classifies a dividend trading window.
type WindowKind string

const (
	WindowPostEventBuy      WindowKind = "POST_EVENT_BUY"
	WindowPreEventLiquidate WindowKind = "PRE_EVENT_LIQUIDATE"
)

// Confidence is a qualitative confidence grade.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// WindowHit is one (ETF, ex-dividend date) pair that landed inside a
// trading window. A single ETF may produce hits of both kinds on the
// same evaluation date when two different ex-dividend dates each satisfy
// their offset range; each hit is scored independently.
type WindowHit struct {
	Code       string     `json:"code"`
	Kind       WindowKind `json:"kind"`
	EventDate  time.Time  `json:"event_date"`
	DaysOffset int        `json:"days_offset"` // days after the event for buy hits, days until it for liquidate hits
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Priority   int        `json:"priority"`
}

// SignalCategory identifies the indicator family behind a signal.
type SignalCategory string

const (
	SignalRSI       SignalCategory = "RSI"
	SignalBollinger SignalCategory = "Bollinger"
	SignalMATrend   SignalCategory = "MA_Trend"
)

// SignalDirection is the directional label of a technical signal.
type SignalDirection string

const (
	DirectionStrongBuy  SignalDirection = "STRONG_BUY"
	DirectionBuy        SignalDirection = "BUY"
	DirectionSell       SignalDirection = "SELL"
	DirectionStrongSell SignalDirection = "STRONG_SELL"
)

// TechnicalSignal is one discrete observation from the latest bar.
// Signals are additive evidence, not mutually exclusive.
type TechnicalSignal struct {
	Category    SignalCategory  `json:"category"`
	Direction   SignalDirection `json:"direction"`
	Strength    int             `json:"strength"` // 0-100
	Description string          `json:"description"`
}

// IsBearish reports whether the signal counts as bearish evidence.
func (s TechnicalSignal) IsBearish() bool {
	return s.Direction == DirectionSell || s.Direction == DirectionStrongSell
}

// IsBullish reports whether the signal counts as bullish evidence.
func (s TechnicalSignal) IsBullish() bool {
	return s.Direction == DirectionBuy || s.Direction == DirectionStrongBuy
}

// RiskTier is a discrete risk grade derived from the composite score.
type RiskTier string

const (
	RiskVeryLow  RiskTier = "very_low"
	RiskLow      RiskTier = "low"
	RiskMedium   RiskTier = "medium"
	RiskHigh     RiskTier = "high"
	RiskVeryHigh RiskTier = "very_high"
)

// RiskBreakdown holds the four weighted sub-scores behind a composite.
type RiskBreakdown struct {
	Technical  float64 `json:"technical"`
	Timing     float64 `json:"timing"`
	Volatility float64 `json:"volatility"`
	Market     float64 `json:"market"`
}

// RiskAssessment is the blended risk result for one window hit.
// Created fresh per (ETF, WindowHit) pair, never cached across
// evaluation dates.
type RiskAssessment struct {
	Composite float64       `json:"composite"` // 0-100, 0 = lowest risk
	Tier      RiskTier      `json:"tier"`
	Breakdown RiskBreakdown `json:"breakdown"`
}

// Action is the final recommended action.
type Action string

const (
	ActionStrongBuy   Action = "STRONG_BUY"
	ActionBuy         Action = "BUY"
	ActionCautiousBuy Action = "CAUTIOUS_BUY"
	ActionSellPrepare Action = "SELL_PREPARE"
	ActionHold        Action = "HOLD"
	ActionMonitor     Action = "MONITOR"
)

// Urgency grades how quickly a recommendation should be acted on.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
	UrgencyNone   Urgency = "none"
)

// Recommendation is the decision-table output for one window hit.
type Recommendation struct {
	Action     Action     `json:"action"`
	Urgency    Urgency    `json:"urgency"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

// PositionSizing suggests an allocation as a percentage of total
// capital, echoing the inputs that produced it.
type PositionSizing struct {
	AllocationPct float64    `json:"allocation_pct"`
	RiskTier      RiskTier   `json:"risk_tier"`
	Confidence    Confidence `json:"confidence"`
	Reasoning     string     `json:"reasoning"`
}

// Opportunity is the assembled, user-facing record for one window hit.
// Enhanced opportunities carry the full technical/risk/recommendation
// chain; degraded ones (insufficient price history) carry only the
// window fields.
type Opportunity struct {
	Window         WindowHit         `json:"window"`
	Enhanced       bool              `json:"enhanced"`
	TechnicalScore float64           `json:"technical_score,omitempty"`
	Signals        []TechnicalSignal `json:"signals,omitempty"`
	Risk           *RiskAssessment   `json:"risk,omitempty"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
	Sizing         *PositionSizing   `json:"sizing,omitempty"`
	Confidence     Confidence        `json:"confidence"`
	EvaluationDate time.Time         `json:"evaluation_date"`
}
