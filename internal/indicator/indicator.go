// Package indicator provides pure technical indicator functions over
// chronologically ordered price slices (oldest first). Functions never
// mutate their input and never fail for well-formed numeric input;
// insufficient history is reported through the ok return instead.
package indicator

import "math"

// EMA calculates the exponential moving average of prices.
// The seed is the arithmetic mean of the leading period-sized window;
// subsequent values fold in with multiplier 2/(period+1). Returns
// ok=false when there are fewer than period prices.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema, true
}

// RSI calculates the relative strength index over the most recent
// period day-to-day differences. It always returns a value in [0,100]:
// 50 when there are fewer than period+1 prices, 100 when the window
// has no losses.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	n := len(prices)
	for i := 1; i <= period; i++ {
		diff := prices[n-i] - prices[n-i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses += -diff
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDResult holds the MACD line, signal line, and histogram.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the moving average convergence/divergence: the
// 12-period EMA minus the 26-period EMA. The signal line smooths a
// nine-element replication of the scalar line value, so Signal always
// equals Line and Histogram is always zero; downstream scoring relies
// on that exact behavior. Returns ok=false for fewer than 26 prices.
func MACD(prices []float64) (MACDResult, bool) {
	if len(prices) < 26 {
		return MACDResult{}, false
	}

	ema12, ok12 := EMA(prices, 12)
	ema26, ok26 := EMA(prices, 26)
	if !ok12 || !ok26 {
		return MACDResult{}, false
	}

	line := ema12 - ema26

	replicated := make([]float64, 9)
	for i := range replicated {
		replicated[i] = line
	}
	signal, _ := EMA(replicated, 9)

	return MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}, true
}

// Bands holds Bollinger band levels. Lower <= Mid <= Upper always.
type Bands struct {
	Upper float64
	Mid   float64
	Lower float64
}

// Bollinger calculates Bollinger bands over the trailing period-sized
// window: the simple moving average flanked by two population standard
// deviations. Returns ok=false for fewer than period prices.
func Bollinger(prices []float64, period int) (Bands, bool) {
	if period <= 0 || len(prices) < period {
		return Bands{}, false
	}

	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	return Bands{
		Upper: mean + 2*std,
		Mid:   mean,
		Lower: mean - 2*std,
	}, true
}

// ATR calculates the average true range over the most recent period
// bars. True range includes the gap to the previous close. Returns
// ok=false for fewer than period+1 bars.
func ATR(high, low, close []float64, period int) (float64, bool) {
	if period <= 0 || len(high) < period+1 || len(low) < period+1 || len(close) < period+1 {
		return 0, false
	}

	n := len(high)
	var sum float64
	for i := 1; i <= period; i++ {
		h := high[n-i]
		l := low[n-i]
		prevClose := close[n-i-1]
		tr := math.Max(h-l, math.Max(math.Abs(h-prevClose), math.Abs(l-prevClose)))
		sum += tr
	}

	return sum / float64(period), true
}

// VWAP calculates the volume-weighted average price over the entire
// supplied series (not a rolling window). Typical price per bar is
// (high+low+close)/3. Returns ok=false for an empty series or zero
// total volume.
func VWAP(high, low, close, volume []float64) (float64, bool) {
	if len(high) == 0 {
		return 0, false
	}

	var weighted, totalVolume float64
	for i := range high {
		typical := (high[i] + low[i] + close[i]) / 3
		weighted += typical * volume[i]
		totalVolume += volume[i]
	}
	if totalVolume == 0 {
		return 0, false
	}

	return weighted / totalVolume, true
}
