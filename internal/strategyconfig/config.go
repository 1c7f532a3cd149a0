package strategyconfig

import (
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/risk"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/technical"
	"github.com/tsubasarcs/etf-strategy-automation/internal/analysis/windows"
	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/internal/strategy"
)

// Config is the full dividend-capture strategy configuration. It is the
// single source of truth for window bounds, indicator parameters, risk
// weights, sizing, and the tracked ETF list.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Windows   Windows   `yaml:"windows" json:"windows"`
	Technical Technical `yaml:"technical" json:"technical"`
	Risk      Risk      `yaml:"risk" json:"risk"`
	Sizing    Sizing    `yaml:"sizing" json:"sizing"`
	ETFs      []ETF     `yaml:"etfs" json:"etfs"`
}

// Meta identifies the strategy revision.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Windows bounds the pre/post ex-dividend opportunity windows in days.
type Windows struct {
	PostEventDays      int `yaml:"post_event_days" json:"post_event_days"`
	PreEventDays       int `yaml:"pre_event_days" json:"pre_event_days"`
	HighConfidenceDays int `yaml:"high_confidence_days" json:"high_confidence_days"`
}

// Technical holds the indicator parameters.
type Technical struct {
	RSIPeriod     int     `yaml:"rsi_period" json:"rsi_period"`
	RSIOversold   float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	MAShort       int     `yaml:"ma_short" json:"ma_short"`
	MAMedium      int     `yaml:"ma_medium" json:"ma_medium"`
	MALong        int     `yaml:"ma_long" json:"ma_long"`
	BBPeriod      int     `yaml:"bb_period" json:"bb_period"`
	BBStdDev      float64 `yaml:"bb_std_dev" json:"bb_std_dev"`
	VolumePeriod  int     `yaml:"volume_period" json:"volume_period"`
	MinBars       int     `yaml:"min_bars" json:"min_bars"`
}

// Risk holds the four sub-score weights. They must sum to 1.0.
type Risk struct {
	TechnicalWeight  float64 `yaml:"technical_weight" json:"technical_weight"`
	TimingWeight     float64 `yaml:"timing_weight" json:"timing_weight"`
	VolatilityWeight float64 `yaml:"volatility_weight" json:"volatility_weight"`
	MarketWeight     float64 `yaml:"market_weight" json:"market_weight"`
}

// Sizing maps risk tiers to base allocation percentages (0..1).
type Sizing struct {
	VeryLowPct   float64 `yaml:"very_low_pct" json:"very_low_pct"`
	LowPct       float64 `yaml:"low_pct" json:"low_pct"`
	MediumPct    float64 `yaml:"medium_pct" json:"medium_pct"`
	HighPct      float64 `yaml:"high_pct" json:"high_pct"`
	VeryHighPct  float64 `yaml:"very_high_pct" json:"very_high_pct"`
	MaxSinglePct float64 `yaml:"max_single_pct" json:"max_single_pct"`
}

// ETF is one tracked fund with its profile and expected dividend schedule.
type ETF struct {
	Code           string  `yaml:"code" json:"code"`
	Name           string  `yaml:"name" json:"name"`
	ExpectedReturn float64 `yaml:"expected_return" json:"expected_return"`
	Priority       int     `yaml:"priority" json:"priority"`
	Beta           float64 `yaml:"beta" json:"beta"`
	SuccessRate    float64 `yaml:"success_rate" json:"success_rate"`
	DividendMonths []int   `yaml:"dividend_months" json:"dividend_months"`
	DividendDay    int     `yaml:"dividend_day" json:"dividend_day"`
}

// Default returns the built-in configuration used when no YAML file is
// provided. Matches the production Taiwan high-dividend ETF set.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "tw_etf_dividend_capture",
			Version:    "v1",
			Timezone:   "Asia/Taipei",
		},
		Windows: Windows{
			PostEventDays:      7,
			PreEventDays:       3,
			HighConfidenceDays: 3,
		},
		Technical: Technical{
			RSIPeriod:     14,
			RSIOversold:   30,
			RSIOverbought: 70,
			MAShort:       5,
			MAMedium:      10,
			MALong:        20,
			BBPeriod:      20,
			BBStdDev:      2,
			VolumePeriod:  10,
			MinBars:       30,
		},
		Risk: Risk{
			TechnicalWeight:  0.25,
			TimingWeight:     0.25,
			VolatilityWeight: 0.25,
			MarketWeight:     0.25,
		},
		Sizing: Sizing{
			VeryLowPct:   0.25,
			LowPct:       0.20,
			MediumPct:    0.15,
			HighPct:      0.10,
			VeryHighPct:  0.05,
			MaxSinglePct: 0.30,
		},
		ETFs: []ETF{
			{
				Code:           "0056",
				Name:           "元大高股息",
				ExpectedReturn: 0.015,
				Priority:       1,
				Beta:           0.85,
				SuccessRate:    0.75,
				DividendMonths: []int{1, 4, 7, 10},
				DividendDay:    15,
			},
			{
				Code:           "00878",
				Name:           "國泰永續高股息",
				ExpectedReturn: 0.012,
				Priority:       2,
				Beta:           0.80,
				SuccessRate:    0.72,
				DividendMonths: []int{2, 5, 8, 11},
				DividendDay:    20,
			},
			{
				Code:           "00919",
				Name:           "群益台灣精選高息",
				ExpectedReturn: 0.018,
				Priority:       3,
				Beta:           0.90,
				SuccessRate:    0.70,
				DividendMonths: []int{3, 6, 9, 12},
				DividendDay:    16,
			},
		},
	}
}

// WindowBounds converts the config section into detector bounds.
func (c *Config) WindowBounds() windows.Bounds {
	return windows.Bounds{
		PostEventDays:      c.Windows.PostEventDays,
		PreEventDays:       c.Windows.PreEventDays,
		HighConfidenceDays: c.Windows.HighConfidenceDays,
	}
}

// TechnicalParams converts the config section into engine parameters.
func (c *Config) TechnicalParams() technical.Params {
	return technical.Params{
		RSIPeriod:     c.Technical.RSIPeriod,
		RSIOversold:   c.Technical.RSIOversold,
		RSIOverbought: c.Technical.RSIOverbought,
		MAShort:       c.Technical.MAShort,
		MAMedium:      c.Technical.MAMedium,
		MALong:        c.Technical.MALong,
		BBPeriod:      c.Technical.BBPeriod,
		BBStdDev:      c.Technical.BBStdDev,
		VolumePeriod:  c.Technical.VolumePeriod,
		MinBars:       c.Technical.MinBars,
	}
}

// RiskWeights converts the config section into composer weights.
func (c *Config) RiskWeights() risk.Weights {
	return risk.Weights{
		Technical:  c.Risk.TechnicalWeight,
		Timing:     c.Risk.TimingWeight,
		Volatility: c.Risk.VolatilityWeight,
		Market:     c.Risk.MarketWeight,
	}
}

// SizingTable converts the config section into the recommender's table.
func (c *Config) SizingTable() strategy.SizingTable {
	return strategy.SizingTable{
		VeryLow:   c.Sizing.VeryLowPct,
		Low:       c.Sizing.LowPct,
		Medium:    c.Sizing.MediumPct,
		High:      c.Sizing.HighPct,
		VeryHigh:  c.Sizing.VeryHighPct,
		MaxSingle: c.Sizing.MaxSinglePct,
	}
}

// Profiles returns the tracked ETF profiles keyed by code.
func (c *Config) Profiles() map[string]contracts.ETFProfile {
	profiles := make(map[string]contracts.ETFProfile, len(c.ETFs))
	for _, e := range c.ETFs {
		profiles[e.Code] = contracts.ETFProfile{
			Code:           e.Code,
			Name:           e.Name,
			ExpectedReturn: e.ExpectedReturn,
			Priority:       e.Priority,
			Beta:           e.Beta,
			SuccessRate:    e.SuccessRate,
		}
	}
	return profiles
}

// Codes returns the tracked ETF codes in config order.
func (c *Config) Codes() []string {
	codes := make([]string, 0, len(c.ETFs))
	for _, e := range c.ETFs {
		codes = append(codes, e.Code)
	}
	return codes
}
