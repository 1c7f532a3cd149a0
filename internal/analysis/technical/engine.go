package technical

import (
	"fmt"
	"math"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// Params holds the tunable indicator parameters.
type Params struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	MAShort       int
	MAMedium      int
	MALong        int
	BBPeriod      int
	BBStdDev      float64
	VolumePeriod  int
	MinBars       int
}

// DefaultParams returns the production indicator parameters.
func DefaultParams() Params {
	return Params{
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
	}
}

// NeutralScore is returned when there is not enough history to score.
const NeutralScore = 50.0

// EnrichedSeries carries a price series with trailing-window indicators
// aligned to each bar. Entries before an indicator's warm-up period are
// NaN, mirroring a rolling computation with no look-ahead.
type EnrichedSeries struct {
	Bars []contracts.PriceBar

	MAShort  []float64
	MAMedium []float64
	MALong   []float64

	RSI []float64

	BBUpper    []float64
	BBMiddle   []float64
	BBLower    []float64
	BBPosition []float64

	VolumeMA    []float64
	VolumeRatio []float64
}

// Sufficient reports whether the series has enough bars for scoring.
func (s *EnrichedSeries) Sufficient() bool {
	return s.RSI != nil
}

// Engine computes technical indicators, discrete signals, and the 0-100
// composite technical score. All rules are additive and reproducible
// from the same inputs.
type Engine struct {
	params Params
	logger *logger.Logger
}

// NewEngine creates an indicator engine.
func NewEngine(params Params, log *logger.Logger) *Engine {
	return &Engine{params: params, logger: log}
}

// MinBars returns the minimum series length required for scoring.
func (e *Engine) MinBars() int {
	return e.params.MinBars
}

// Compute derives all indicators over the full series. With fewer than
// MinBars bars it is a pass-through: the bars are kept but no indicator
// slices are populated, and Signals/Score degrade to neutral output.
func (e *Engine) Compute(bars []contracts.PriceBar) *EnrichedSeries {
	series := &EnrichedSeries{Bars: bars}
	if len(bars) < e.params.MinBars {
		return series
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}

	series.MAShort = rollingMean(closes, e.params.MAShort)
	series.MAMedium = rollingMean(closes, e.params.MAMedium)
	series.MALong = rollingMean(closes, e.params.MALong)

	series.RSI = e.rsi(closes)

	series.BBMiddle = rollingMean(closes, e.params.BBPeriod)
	std := rollingStd(closes, e.params.BBPeriod)
	series.BBUpper = make([]float64, len(closes))
	series.BBLower = make([]float64, len(closes))
	series.BBPosition = make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(series.BBMiddle[i]) || math.IsNaN(std[i]) {
			series.BBUpper[i] = math.NaN()
			series.BBLower[i] = math.NaN()
			series.BBPosition[i] = math.NaN()
			continue
		}
		series.BBUpper[i] = series.BBMiddle[i] + std[i]*e.params.BBStdDev
		series.BBLower[i] = series.BBMiddle[i] - std[i]*e.params.BBStdDev
		series.BBPosition[i] = bandPosition(closes[i], series.BBUpper[i], series.BBLower[i])
	}

	series.VolumeMA = rollingMean(volumes, e.params.VolumePeriod)
	series.VolumeRatio = make([]float64, len(volumes))
	for i := range volumes {
		if math.IsNaN(series.VolumeMA[i]) || series.VolumeMA[i] == 0 {
			series.VolumeRatio[i] = math.NaN()
			continue
		}
		series.VolumeRatio[i] = volumes[i] / series.VolumeMA[i]
	}

	return series
}

// Signals evaluates the discrete signal rules on the most recent bar.
// An insufficient series yields no signals.
func (e *Engine) Signals(series *EnrichedSeries) []contracts.TechnicalSignal {
	if !series.Sufficient() {
		return nil
	}

	last := len(series.Bars) - 1
	var signals []contracts.TechnicalSignal

	if rsi := series.RSI[last]; !math.IsNaN(rsi) {
		switch {
		case rsi < e.params.RSIOversold:
			signals = append(signals, contracts.TechnicalSignal{
				Category:    contracts.SignalRSI,
				Direction:   contracts.DirectionStrongBuy,
				Strength:    90,
				Description: fmt.Sprintf("RSI oversold (%.1f), strong rebound setup", rsi),
			})
		case rsi > e.params.RSIOverbought:
			signals = append(signals, contracts.TechnicalSignal{
				Category:    contracts.SignalRSI,
				Direction:   contracts.DirectionSell,
				Strength:    60,
				Description: fmt.Sprintf("RSI overbought (%.1f), sell signal", rsi),
			})
		}
	}

	if pos := series.BBPosition[last]; !math.IsNaN(pos) {
		switch {
		case pos < 0.1:
			signals = append(signals, contracts.TechnicalSignal{
				Category:    contracts.SignalBollinger,
				Direction:   contracts.DirectionStrongBuy,
				Strength:    85,
				Description: "price hugging the lower Bollinger band, rebound likely",
			})
		case pos > 0.9:
			signals = append(signals, contracts.TechnicalSignal{
				Category:    contracts.SignalBollinger,
				Direction:   contracts.DirectionSell,
				Strength:    70,
				Description: "price hugging the upper Bollinger band, pullback risk",
			})
		}
	}

	lastClose := series.Bars[last].Close
	ma5, ma10, ma20 := series.MAShort[last], series.MAMedium[last], series.MALong[last]
	if !math.IsNaN(ma5) && !math.IsNaN(ma10) && !math.IsNaN(ma20) {
		if lastClose > ma5 && ma5 > ma10 && ma10 > ma20 {
			signals = append(signals, contracts.TechnicalSignal{
				Category:    contracts.SignalMATrend,
				Direction:   contracts.DirectionBuy,
				Strength:    75,
				Description: "bullish moving average stack, uptrend intact",
			})
		}
	}

	return signals
}

// Score computes the additive 0-100 composite from the most recent bar.
// An insufficient series scores exactly neutral.
func (e *Engine) Score(series *EnrichedSeries) float64 {
	if !series.Sufficient() {
		return NeutralScore
	}

	last := len(series.Bars) - 1
	score := NeutralScore

	if rsi := series.RSI[last]; !math.IsNaN(rsi) {
		switch {
		case rsi >= e.params.RSIOversold && rsi <= e.params.RSIOverbought:
			score += 10
		case rsi < e.params.RSIOversold:
			score += 20
		case rsi > e.params.RSIOverbought:
			score -= 15
		}
	}

	if pos := series.BBPosition[last]; !math.IsNaN(pos) {
		switch {
		case pos >= 0.2 && pos <= 0.8:
			score += 10
		case pos < 0.2:
			score += 20
		default:
			score -= 15
		}
	}

	lastClose := series.Bars[last].Close
	if ma20 := series.MALong[last]; !math.IsNaN(ma20) {
		if lastClose > ma20 {
			score += 15
		}
		if ma5 := series.MAShort[last]; !math.IsNaN(ma5) && ma5 > ma20 {
			score += 10
		}
	}

	return clamp(score, 0, 100)
}

// rsi computes the simple rolling-mean RSI: average gain over average
// loss across the trailing period. A zero average loss saturates the
// value to 100 instead of dividing by zero.
func (e *Engine) rsi(closes []float64) []float64 {
	period := e.params.RSIPeriod
	out := nanSlice(len(closes))
	if len(closes) <= period {
		return out
	}

	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			delta := closes[j] - closes[j-1]
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// bandPosition returns where close sits between the bands. A zero-width
// band yields the neutral sentinel 0.5 rather than dividing by zero;
// closes outside the bands legitimately map below 0 or above 1.
func bandPosition(close, upper, lower float64) float64 {
	width := upper - lower
	if width == 0 {
		return 0.5
	}
	return (close - lower) / width
}

// rollingMean computes a trailing simple moving average; entries before
// the window is full are NaN.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd computes the trailing sample standard deviation.
func rollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 || len(values) < window {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		var mean float64
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)

		var variance float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window-1))
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
