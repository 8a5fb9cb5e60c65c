package report

import (
	"strings"
	"testing"
	"time"

	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/scanner"
	"github.com/kaiquant/kai/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData(t *testing.T) Data {
	t.Helper()

	w := ledger.New(100000)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	open, err := w.Open("HDFCBANK.NS", 1500, 5, now)
	require.NoError(t, err)
	_, err = w.Open("INFY.NS", 1000, 4, now)
	require.NoError(t, err)
	closed, done := w.Evaluate(open.ID, 1700, now.Add(time.Hour))
	require.True(t, done)

	analyses := []scoring.Analysis{
		{
			Symbol: "TCS.NS", Category: "it", Price: 3500, Score: 4,
			Signals: []core.Signal{{Text: "RSI oversold", Delta: 2}},
		},
		{Symbol: "INFY.NS", Category: "it", Price: 1000, Score: 1},
		{Symbol: "YESBANK.NS", Category: "banking", Price: 20, Score: -2},
	}

	return Data{
		Result: &scanner.Result{
			Analyses: analyses,
			Skipped:  []scanner.Skip{{Symbol: "GONE.NS", Reason: "no data"}},
			Closed:   []ledger.Position{closed},
			Wallet:   w,
			Started:  now,
			Duration: 1500 * time.Millisecond,
		},
		Buys:   analyses[:1],
		Sells:  analyses[2:],
		Quotes: map[string]float64{"INFY.NS": 1050},
	}
}

func TestRender_Header(t *testing.T) {
	out := Render(sampleData(t))

	assert.Contains(t, out, "KAI Daily Report  2025-06-02")
	assert.Contains(t, out, "Scored 3 symbols")
	assert.Contains(t, out, "(1 skipped)")
}

func TestRender_Signals(t *testing.T) {
	out := Render(sampleData(t))

	assert.Contains(t, out, "BUY SIGNALS (1)")
	assert.Contains(t, out, "TCS.NS")
	assert.Contains(t, out, "RSI oversold")
	assert.Contains(t, out, "SELL SIGNALS (1)")
	assert.Contains(t, out, "YESBANK.NS")

	// Buys are listed before sells.
	assert.Less(t, strings.Index(out, "BUY SIGNALS"), strings.Index(out, "SELL SIGNALS"))
}

func TestRender_SectorSummary(t *testing.T) {
	out := Render(sampleData(t))

	assert.Contains(t, out, "SECTOR SUMMARY")
	// it: scores 4 and 1 average to 2.5 with one buy.
	assert.Contains(t, out, "avg score +2.5")
	assert.Contains(t, out, "(1 buy, 0 sell of 2)")
	// banking: single sell at -2.
	assert.Contains(t, out, "avg score -2.0")
}

func TestRender_Setups(t *testing.T) {
	out := Render(sampleData(t))

	assert.Contains(t, out, "TOP SETUPS")
	// Entry 3500: target 3850, stop 3395.
	assert.Contains(t, out, "target 3850.00")
	assert.Contains(t, out, "stop 3395.00")
	assert.Contains(t, out, "r/r 1:3.3")
}

func TestRender_Portfolio(t *testing.T) {
	out := Render(sampleData(t))

	assert.Contains(t, out, "PORTFOLIO")
	assert.Contains(t, out, "capital 100000.00")
	// INFY open at 1000, quoted 1050: +200 on 4 shares, +5%.
	assert.Contains(t, out, "pnl +200.00 (+5.00%)")
	// HDFCBANK closed at its 1650 target for +750.
	assert.Contains(t, out, "closed today: HDFCBANK.NS")
	assert.Contains(t, out, "hit target")
	assert.Contains(t, out, "pnl +750.00")
}

func TestRender_EmptySections(t *testing.T) {
	d := Data{
		Result: &scanner.Result{
			Wallet:  ledger.New(50000),
			Started: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
	}
	out := Render(d)

	assert.Contains(t, out, "BUY SIGNALS (0)")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "balance 50000.00")
}
