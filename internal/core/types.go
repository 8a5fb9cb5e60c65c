package core

import "time"

// Trend represents the weekly trend classification of an instrument
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// PriceBar represents a single OHLCV bar
type PriceBar struct {
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Time   time.Time `json:"time"`
}

// Series is a chronologically ordered price series, oldest bar first.
// No gap-filling is performed; length is the only precondition the
// indicator functions check.
type Series []PriceBar

// Closes returns the close prices of the series, oldest first.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high prices of the series, oldest first.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low prices of the series, oldest first.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volumes of the series, oldest first.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Fundamental holds fundamental attributes of an instrument.
// Absent fields are zero; the scoring thresholds are written so that
// zero never triggers a fundamental rule.
type Fundamental struct {
	PERatio        float64 `json:"pe_ratio"`
	PriceToBook    float64 `json:"price_to_book"`
	MarketCap      float64 `json:"market_cap"`
	ReturnOnEquity float64 `json:"return_on_equity"`
	TotalDebt      float64 `json:"total_debt"`
	RevenueGrowth  float64 `json:"revenue_growth"`
}

// Signal is a scoring rule that fired: a user-facing tag plus the score
// delta it contributed. Signals are explanatory and never re-parsed.
type Signal struct {
	Text  string `json:"text"`
	Delta int    `json:"delta"`
}
