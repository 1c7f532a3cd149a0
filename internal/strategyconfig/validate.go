package strategyconfig

import (
	"fmt"
	"math"
	"time"
)

// ValidationError is a hard config failure. The process refuses to
// start on one of these.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	if cfg.Windows.PostEventDays <= 0 {
		return ValidationError{"windows.post_event_days", "must be > 0"}
	}
	if cfg.Windows.PreEventDays < 0 {
		return ValidationError{"windows.pre_event_days", "must be >= 0"}
	}
	if cfg.Windows.HighConfidenceDays <= 0 || cfg.Windows.HighConfidenceDays > cfg.Windows.PostEventDays {
		return ValidationError{"windows.high_confidence_days", "must be in (0, post_event_days]"}
	}

	t := cfg.Technical
	if t.RSIPeriod <= 1 {
		return ValidationError{"technical.rsi_period", "must be > 1"}
	}
	if t.RSIOversold >= t.RSIOverbought {
		return ValidationError{"technical", "rsi_oversold must be < rsi_overbought"}
	}
	if !(t.MAShort < t.MAMedium && t.MAMedium < t.MALong) {
		return ValidationError{"technical", "must satisfy ma_short < ma_medium < ma_long"}
	}
	if t.BBPeriod <= 1 {
		return ValidationError{"technical.bb_period", "must be > 1"}
	}
	if t.BBStdDev <= 0 {
		return ValidationError{"technical.bb_std_dev", "must be > 0"}
	}
	if t.MinBars < t.MALong {
		return ValidationError{"technical.min_bars", "must be >= ma_long"}
	}

	weightSum := cfg.Risk.TechnicalWeight + cfg.Risk.TimingWeight +
		cfg.Risk.VolatilityWeight + cfg.Risk.MarketWeight
	if math.Abs(weightSum-1.0) > 1e-6 {
		return ValidationError{"risk", fmt.Sprintf("weights must sum to 1.0, got %.4f", weightSum)}
	}

	s := cfg.Sizing
	for _, p := range []struct {
		field string
		pct   float64
	}{
		{"sizing.very_low_pct", s.VeryLowPct},
		{"sizing.low_pct", s.LowPct},
		{"sizing.medium_pct", s.MediumPct},
		{"sizing.high_pct", s.HighPct},
		{"sizing.very_high_pct", s.VeryHighPct},
		{"sizing.max_single_pct", s.MaxSinglePct},
	} {
		if p.pct <= 0 || p.pct > 1 {
			return ValidationError{p.field, "must be in (0, 1]"}
		}
	}
	if !(s.VeryLowPct >= s.LowPct && s.LowPct >= s.MediumPct && s.MediumPct >= s.HighPct && s.HighPct >= s.VeryHighPct) {
		return ValidationError{"sizing", "allocations must not increase with risk tier"}
	}

	if len(cfg.ETFs) == 0 {
		return ValidationError{"etfs", "at least one ETF required"}
	}
	seen := make(map[string]bool, len(cfg.ETFs))
	for i, e := range cfg.ETFs {
		field := fmt.Sprintf("etfs[%d]", i)
		if e.Code == "" {
			return ValidationError{field + ".code", "required"}
		}
		if seen[e.Code] {
			return ValidationError{field + ".code", fmt.Sprintf("duplicate code %s", e.Code)}
		}
		seen[e.Code] = true
		if e.Priority <= 0 {
			return ValidationError{field + ".priority", "must be > 0"}
		}
		if e.Beta <= 0 {
			return ValidationError{field + ".beta", "must be > 0"}
		}
		if e.SuccessRate < 0 || e.SuccessRate > 1 {
			return ValidationError{field + ".success_rate", "must be in [0, 1]"}
		}
		if e.DividendDay < 1 || e.DividendDay > 28 {
			return ValidationError{field + ".dividend_day", "must be in [1, 28]"}
		}
		for _, m := range e.DividendMonths {
			if m < 1 || m > 12 {
				return ValidationError{field + ".dividend_months", fmt.Sprintf("invalid month %d", m)}
			}
		}
	}

	return nil
}
