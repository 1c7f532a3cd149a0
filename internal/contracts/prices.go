package contracts

import "time"

// PriceBar represents one trading day of OHLCV data for an ETF.
// Bars are immutable once produced; a series is ordered by strictly
// increasing trade date with no duplicates.
type PriceBar struct {
	Code     string    `json:"code"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Turnover float64   `json:"turnover"`
}

// ETFProfile holds static per-ETF metadata, set at configuration time
// and read-only during scoring.
type ETFProfile struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	ExpectedReturn float64 `json:"expected_return"` // long-run expected return (%)
	Priority       int     `json:"priority"`        // lower = more preferred
	Beta           float64 `json:"beta"`            // market sensitivity
	SuccessRate    float64 `json:"success_rate"`    // historical target-return hit rate
}

// Default values applied when an ETF has no configured profile.
const (
	DefaultBeta     = 0.80
	DefaultPriority = 999
)

// ProfileOr returns the profile for code, or a neutral default profile
// that sorts last and carries the fallback beta.
func ProfileOr(profiles map[string]ETFProfile, code string) ETFProfile {
	if p, ok := profiles[code]; ok {
		return p
	}
	return ETFProfile{
		Code:     code,
		Priority: DefaultPriority,
		Beta:     DefaultBeta,
	}
}
