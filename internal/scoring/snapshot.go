package scoring

import (
	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/indicator"
)

// Snapshot holds the per-series indicator values an analysis is scored
// from. Unavailable values (history too short) stay distinguishable
// from zero so rules can be skipped rather than mis-fired.
type Snapshot struct {
	RSI        float64         `json:"rsi"`
	EMA9       indicator.Value `json:"ema9"`
	EMA21      indicator.Value `json:"ema21"`
	EMA50      indicator.Value `json:"ema50"`
	EMA200     indicator.Value `json:"ema200"`
	MACDLine   indicator.Value `json:"macd"`
	MACDHist   indicator.Value `json:"macd_hist"`
	BBUpper    indicator.Value `json:"bb_upper"`
	BBLower    indicator.Value `json:"bb_lower"`
	ATR        indicator.Value `json:"atr"`
	VWAP       indicator.Value `json:"vwap"`
	Support    float64         `json:"support"`
	Resistance float64         `json:"resistance"`
}

const supportWindow = 20

// NewSnapshot computes the indicator snapshot for a daily series.
func NewSnapshot(daily core.Series) Snapshot {
	closes := daily.Closes()
	highs := daily.Highs()
	lows := daily.Lows()
	volumes := daily.Volumes()

	s := Snapshot{
		RSI:    indicator.RSI(closes, 14),
		EMA9:   indicator.Avail(indicator.EMA(closes, 9)),
		EMA21:  indicator.Avail(indicator.EMA(closes, 21)),
		EMA50:  indicator.Avail(indicator.EMA(closes, 50)),
		EMA200: indicator.Avail(indicator.EMA(closes, 200)),
		ATR:    indicator.Avail(indicator.ATR(highs, lows, closes, 14)),
		VWAP:   indicator.Avail(indicator.VWAP(highs, lows, closes, volumes)),
	}

	if m, ok := indicator.MACD(closes); ok {
		s.MACDLine = indicator.Avail(m.Line, true)
		s.MACDHist = indicator.Avail(m.Histogram, true)
	}
	if b, ok := indicator.Bollinger(closes, 20); ok {
		s.BBUpper = indicator.Avail(b.Upper, true)
		s.BBLower = indicator.Avail(b.Lower, true)
	}

	s.Support, s.Resistance = supportResistance(highs, lows)
	return s
}

// supportResistance returns the trailing 20-bar low and high.
func supportResistance(highs, lows []float64) (support, resistance float64) {
	if len(lows) == 0 {
		return 0, 0
	}
	start := len(lows) - supportWindow
	if start < 0 {
		start = 0
	}
	support = lows[start]
	resistance = highs[start]
	for i := start + 1; i < len(lows); i++ {
		if lows[i] < support {
			support = lows[i]
		}
		if highs[i] > resistance {
			resistance = highs[i]
		}
	}
	return support, resistance
}

// WeeklyTrend classifies the weekly series: BULLISH when the latest
// weekly close is above the 21-period weekly EMA, BEARISH when not,
// NEUTRAL when fewer than 21 weekly bars exist.
func WeeklyTrend(weekly core.Series) core.Trend {
	closes := weekly.Closes()
	ema21, ok := indicator.EMA(closes, 21)
	if !ok {
		return core.TrendNeutral
	}
	if closes[len(closes)-1] > ema21 {
		return core.TrendBullish
	}
	return core.TrendBearish
}

// Returns holds trailing fractional returns over standard windows.
type Returns struct {
	Week    float64 `json:"ret_1w"`
	Month   float64 `json:"ret_1m"`
	Quarter float64 `json:"ret_3m"`
}

// TrailingReturns computes 1-week/1-month/3-month returns as
// close[t]/close[t-n] - 1. Windows without enough history are 0.
func TrailingReturns(closes []float64) Returns {
	return Returns{
		Week:    trailingReturn(closes, 5),
		Month:   trailingReturn(closes, 20),
		Quarter: trailingReturn(closes, 60),
	}
}

func trailingReturn(closes []float64, n int) float64 {
	if len(closes) < n {
		return 0
	}
	base := closes[len(closes)-n]
	if base == 0 {
		return 0
	}
	return closes[len(closes)-1]/base - 1
}
