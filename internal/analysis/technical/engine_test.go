package technical

import (
	"math"
	"testing"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

func testEngine() *Engine {
	return NewEngine(DefaultParams(), logger.NewNop())
}

// bars builds a daily series from closing prices; volume is constant
// unless overridden.
func bars(closes []float64) []contracts.PriceBar {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = contracts.PriceBar{
			Code:   "0056",
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

func constantCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func TestCompute_InsufficientBarsIsPassThrough(t *testing.T) {
	e := testEngine()
	series := e.Compute(bars(constantCloses(29, 36.5)))

	if series.Sufficient() {
		t.Error("Compute() with 29 bars should not be sufficient")
	}
	if len(series.Bars) != 29 {
		t.Errorf("bars not passed through, got %d", len(series.Bars))
	}
	if got := e.Score(series); got != NeutralScore {
		t.Errorf("Score() = %v, want exactly %v", got, NeutralScore)
	}
	if sigs := e.Signals(series); len(sigs) != 0 {
		t.Errorf("Signals() = %d signals, want none", len(sigs))
	}
}

func TestCompute_MovingAverages(t *testing.T) {
	e := testEngine()

	// 1..35 ascending: trailing means are easy to state in closed form.
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	series := e.Compute(bars(closes))

	last := len(closes) - 1
	// MA5 of 31..35 = 33, MA10 of 26..35 = 30.5, MA20 of 16..35 = 25.5
	if got := series.MAShort[last]; math.Abs(got-33) > 1e-9 {
		t.Errorf("MA5 = %v, want 33", got)
	}
	if got := series.MAMedium[last]; math.Abs(got-30.5) > 1e-9 {
		t.Errorf("MA10 = %v, want 30.5", got)
	}
	if got := series.MALong[last]; math.Abs(got-25.5) > 1e-9 {
		t.Errorf("MA20 = %v, want 25.5", got)
	}
	if !math.IsNaN(series.MALong[18]) {
		t.Error("MA20 before warm-up should be NaN")
	}
}

func TestCompute_RSISaturatesOnZeroLoss(t *testing.T) {
	e := testEngine()

	// Strictly rising closes: average loss is zero, RSI saturates to
	// 100 instead of dividing by zero.
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 30 + float64(i)*0.1
	}
	series := e.Compute(bars(closes))

	last := len(closes) - 1
	if got := series.RSI[last]; got != 100 {
		t.Errorf("RSI on all-gains series = %v, want 100", got)
	}

	// A flat series also has zero average loss.
	flat := e.Compute(bars(constantCloses(35, 36.5)))
	if got := flat.RSI[len(flat.Bars)-1]; got != 100 {
		t.Errorf("RSI on flat series = %v, want 100", got)
	}
}

func TestCompute_RSIKnownValue(t *testing.T) {
	e := testEngine()

	// 14 deltas: seven +1.0 then seven -0.5. avgGain = 7/14 = 0.5,
	// avgLoss = 3.5/14 = 0.25, RS = 2, RSI = 100 - 100/3.
	closes := constantCloses(21, 30) // warm-up padding
	v := 30.0
	for i := 0; i < 7; i++ {
		v += 1.0
		closes = append(closes, v)
	}
	for i := 0; i < 7; i++ {
		v -= 0.5
		closes = append(closes, v)
	}
	series := e.Compute(bars(closes))

	want := 100 - 100/(1+2.0)
	if got := series.RSI[len(closes)-1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("RSI = %v, want %v", got, want)
	}
}

func TestCompute_BollingerZeroWidthBand(t *testing.T) {
	e := testEngine()

	series := e.Compute(bars(constantCloses(35, 36.5)))
	last := len(series.Bars) - 1

	if got := series.BBPosition[last]; got != 0.5 {
		t.Errorf("zero-width band position = %v, want neutral 0.5", got)
	}
	if math.IsNaN(series.BBUpper[last]) || math.IsInf(series.BBPosition[last], 0) {
		t.Error("zero-width band must not produce NaN/Inf position")
	}
}

func TestCompute_VolumeRatio(t *testing.T) {
	e := testEngine()

	series := bars(constantCloses(35, 36.5))
	// Double the most recent day's volume: ratio vs the trailing
	// 10-day mean of (9*1000 + 2000)/10 = 1100.
	series[len(series)-1].Volume = 2000
	enriched := e.Compute(series)

	last := len(series) - 1
	want := 2000.0 / 1100.0
	if got := enriched.VolumeRatio[last]; math.Abs(got-want) > 1e-9 {
		t.Errorf("VolumeRatio = %v, want %v", got, want)
	}
}

func TestSignals_FromEnrichedValues(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		rsi      float64
		bbPos    float64
		close    float64
		ma5      float64
		ma10     float64
		ma20     float64
		wantLen  int
		wantDirs []contracts.SignalDirection
	}{
		{
			name: "oversold near lower band with bullish stack",
			rsi:  25, bbPos: 0.05,
			close: 37, ma5: 36.5, ma10: 36, ma20: 35.5,
			wantLen: 3,
			wantDirs: []contracts.SignalDirection{
				contracts.DirectionStrongBuy,
				contracts.DirectionStrongBuy,
				contracts.DirectionBuy,
			},
		},
		{
			name: "overbought near upper band",
			rsi:  75, bbPos: 0.95,
			close: 35, ma5: 36, ma10: 36.5, ma20: 37,
			wantLen: 2,
			wantDirs: []contracts.SignalDirection{
				contracts.DirectionSell,
				contracts.DirectionSell,
			},
		},
		{
			name: "neutral everything",
			rsi:  50, bbPos: 0.5,
			close: 36, ma5: 36.5, ma10: 36, ma20: 35.5,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := enrichedOneBar(tt.close, tt.rsi, tt.bbPos, tt.ma5, tt.ma10, tt.ma20)
			signals := e.Signals(series)
			if len(signals) != tt.wantLen {
				t.Fatalf("Signals() returned %d, want %d", len(signals), tt.wantLen)
			}
			for i, dir := range tt.wantDirs {
				if signals[i].Direction != dir {
					t.Errorf("signals[%d].Direction = %s, want %s", i, signals[i].Direction, dir)
				}
			}
		})
	}
}

func TestScore_FromEnrichedValues(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name  string
		rsi   float64
		bbPos float64
		close float64
		ma5   float64
		ma20  float64
		want  float64
	}{
		{
			// 50 +20 (RSI<30) +20 (pos<0.2) +15 (close>MA20) +10 (MA5>MA20)
			name: "everything bullish hits the ceiling exactly",
			rsi:  25, bbPos: 0.05, close: 37, ma5: 36.5, ma20: 35.5,
			want: 100,
		},
		{
			// 50 +10 +10 +15 +10
			name: "calm uptrend",
			rsi:  55, bbPos: 0.5, close: 37, ma5: 36.5, ma20: 35.5,
			want: 95,
		},
		{
			// 50 -15 (RSI>70) -15 (pos>0.8) + nothing
			name: "overbought and extended",
			rsi:  75, bbPos: 0.95, close: 35, ma5: 35.5, ma20: 36,
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := enrichedOneBar(tt.close, tt.rsi, tt.bbPos, tt.ma5, tt.ma5, tt.ma20)
			if got := e.Score(series); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	e := testEngine()

	for _, rsi := range []float64{0, 25, 50, 75, 100} {
		for _, pos := range []float64{-0.5, 0.05, 0.5, 0.95, 1.5} {
			series := enrichedOneBar(37, rsi, pos, 36.5, 36, 35.5)
			got := e.Score(series)
			if got < 0 || got > 100 {
				t.Errorf("Score(rsi=%v,pos=%v) = %v, out of [0,100]", rsi, pos, got)
			}
		}
	}
}

// enrichedOneBar builds a single-bar EnrichedSeries with chosen latest
// indicator values, so signal and score rules can be pinned directly.
func enrichedOneBar(close, rsi, bbPos, ma5, ma10, ma20 float64) *EnrichedSeries {
	return &EnrichedSeries{
		Bars:       bars([]float64{close}),
		MAShort:    []float64{ma5},
		MAMedium:   []float64{ma10},
		MALong:     []float64{ma20},
		RSI:        []float64{rsi},
		BBUpper:    []float64{close + 1},
		BBMiddle:   []float64{close},
		BBLower:    []float64{close - 1},
		BBPosition: []float64{bbPos},
	}
}
