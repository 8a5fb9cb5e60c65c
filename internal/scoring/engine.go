// Package scoring combines indicator snapshots, fundamentals, and the
// weekly trend into an integer ranking score with an ordered list of
// explanatory signals.
package scoring

import (
	"sort"

	"github.com/kaiquant/kai/internal/core"
)

// Analysis is one scored instrument: the inputs the score was derived
// from plus the score and signals themselves.
type Analysis struct {
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Indicators  Snapshot         `json:"indicators"`
	Fundamental core.Fundamental `json:"fundamental"`
	WeeklyTrend core.Trend       `json:"weekly_trend"`
	Returns     Returns          `json:"returns"`
	Score       int              `json:"score"`
	Signals     []core.Signal    `json:"signals"`
}

// Config holds caller-tunable scoring parameters. The rule table and
// its weights are fixed heuristics; only the buy/sell bucket thresholds
// are configurable.
type Config struct {
	BuyThreshold  int
	SellThreshold int
}

// DefaultConfig returns the standard buy/sell bucket thresholds.
func DefaultConfig() Config {
	return Config{
		BuyThreshold:  3,
		SellThreshold: -1,
	}
}

// Engine scores instruments against the fixed rule table.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score applies the rule table to the analysis, setting Score and
// Signals. Rules over unavailable indicators contribute nothing and
// emit no signal. Signal append order is the rule evaluation order and
// is observable by consumers, so it must stay fixed.
func (e *Engine) Score(a *Analysis) {
	score := 0
	var signals []core.Signal

	add := func(delta int, text string) {
		score += delta
		if text != "" {
			signals = append(signals, core.Signal{Text: text, Delta: delta})
		}
	}

	ind := a.Indicators

	// RSI always carries a value (50 fallback), so this rule always runs.
	switch {
	case ind.RSI < 30:
		add(3, "RSI oversold")
	case ind.RSI < 40:
		add(1, "RSI bullish")
	case ind.RSI > 70:
		add(-2, "RSI overbought")
	}

	if ind.EMA9.OK && ind.EMA21.OK {
		if ind.EMA9.V > ind.EMA21.V {
			add(2, "Golden Cross")
		} else {
			add(-1, "Death Cross")
		}
	}

	if ind.EMA50.OK && a.Price > ind.EMA50.V {
		add(1, "Above 50 EMA")
	}

	if ind.EMA200.OK {
		if a.Price > ind.EMA200.V {
			add(2, "Above 200 EMA")
		} else if a.Price < ind.EMA200.V {
			add(-2, "Below 200 EMA")
		}
	}

	if ind.MACDHist.OK {
		if ind.MACDHist.V > 0 {
			add(1, "MACD bullish")
		} else {
			add(-1, "")
		}
	}

	if ind.Support > 0 {
		distSupport := (a.Price - ind.Support) / ind.Support * 100
		if distSupport < 5 {
			add(1, "Near support")
		}
	}
	if ind.Resistance > 0 {
		distResistance := (ind.Resistance - a.Price) / ind.Resistance * 100
		if distResistance < 2 {
			add(-1, "Near resistance")
		}
	}

	pe := a.Fundamental.PERatio
	if pe > 0 && pe < 25 {
		add(1, "PE reasonable")
	} else if pe > 50 {
		add(-1, "PE expensive")
	}

	if a.Fundamental.ReturnOnEquity > 0.15 {
		add(1, "ROE good")
	}

	if a.WeeklyTrend == core.TrendBullish {
		add(1, "Weekly bullish")
	}

	a.Score = score
	a.Signals = signals
}

// Analyze builds and scores an analysis from raw inputs: the daily
// series drives the indicator snapshot and trailing returns, the
// weekly series the trend classification.
func (e *Engine) Analyze(symbol, category string, daily, weekly core.Series, f core.Fundamental) Analysis {
	a := Analysis{
		Symbol:      symbol,
		Name:        symbol,
		Category:    category,
		Price:       daily.LastClose(),
		Indicators:  NewSnapshot(daily),
		Fundamental: f,
		WeeklyTrend: WeeklyTrend(weekly),
		Returns:     TrailingReturns(daily.Closes()),
	}
	e.Score(&a)
	return a
}

// Rank sorts analyses by score, highest first. The sort is stable:
// equal scores keep the order the symbols were scored in.
func Rank(results []Analysis) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// Buys returns the analyses at or above the buy threshold.
func (e *Engine) Buys(results []Analysis) []Analysis {
	var out []Analysis
	for _, r := range results {
		if r.Score >= e.cfg.BuyThreshold {
			out = append(out, r)
		}
	}
	return out
}

// Sells returns the analyses at or below the sell threshold.
func (e *Engine) Sells(results []Analysis) []Analysis {
	var out []Analysis
	for _, r := range results {
		if r.Score <= e.cfg.SellThreshold {
			out = append(out, r)
		}
	}
	return out
}
