// Package report renders a scan cycle as a plain-text daily report.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/scanner"
	"github.com/kaiquant/kai/internal/scoring"
)

// Reward/risk of the fixed exit levels: 10% target over a 3% stop.
const riskReward = "1:3.3"

const topSetups = 5

// Data carries everything one report needs. Quotes maps open-position
// symbols to their latest price; missing symbols are reported at
// entry price.
type Data struct {
	Result *scanner.Result
	Buys   []scoring.Analysis
	Sells  []scoring.Analysis
	Quotes map[string]float64
}

// Render produces the daily report text.
func Render(d Data) string {
	var sb strings.Builder

	res := d.Result
	fmt.Fprintf(&sb, "KAI Daily Report  %s\n", res.Started.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Scored %d symbols in %s", len(res.Analyses), res.Duration.Round(time.Millisecond))
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&sb, " (%d skipped)", n)
	}
	sb.WriteString("\n\n")

	writeSignals(&sb, "BUY SIGNALS", d.Buys)
	writeSignals(&sb, "SELL SIGNALS", d.Sells)
	writeSectors(&sb, res.Analyses, d.Buys, d.Sells)
	writeSetups(&sb, d.Buys)
	writePortfolio(&sb, res, d.Quotes)

	return sb.String()
}

func writeSignals(sb *strings.Builder, title string, list []scoring.Analysis) {
	fmt.Fprintf(sb, "%s (%d)\n", title, len(list))
	if len(list) == 0 {
		sb.WriteString("  none\n\n")
		return
	}
	for i, a := range list {
		fmt.Fprintf(sb, "  %2d. %-14s %-12s %10.2f  score %+d\n",
			i+1, a.Symbol, a.Category, a.Price, a.Score)
		for _, sig := range a.Signals {
			if sig.Text == "" {
				continue
			}
			fmt.Fprintf(sb, "      - %s\n", sig.Text)
		}
	}
	sb.WriteString("\n")
}

func writeSectors(sb *strings.Builder, analyses, buys, sells []scoring.Analysis) {
	type agg struct {
		total, count, buy, sell int
	}
	byCat := map[string]*agg{}
	var order []string
	for _, a := range analyses {
		c := byCat[a.Category]
		if c == nil {
			c = &agg{}
			byCat[a.Category] = c
			order = append(order, a.Category)
		}
		c.total += a.Score
		c.count++
	}
	for _, a := range buys {
		byCat[a.Category].buy++
	}
	for _, a := range sells {
		byCat[a.Category].sell++
	}

	sb.WriteString("SECTOR SUMMARY\n")
	for _, cat := range order {
		c := byCat[cat]
		avg := float64(c.total) / float64(c.count)
		fmt.Fprintf(sb, "  %-14s avg score %+.1f  (%d buy, %d sell of %d)\n",
			cat, avg, c.buy, c.sell, c.count)
	}
	sb.WriteString("\n")
}

func writeSetups(sb *strings.Builder, buys []scoring.Analysis) {
	sb.WriteString("TOP SETUPS\n")
	if len(buys) == 0 {
		sb.WriteString("  none\n\n")
		return
	}
	n := len(buys)
	if n > topSetups {
		n = topSetups
	}
	for _, a := range buys[:n] {
		target := round2(a.Price * 1.10)
		stop := round2(a.Price * 0.97)
		fmt.Fprintf(sb, "  %-14s entry %.2f  target %.2f  stop %.2f  r/r %s\n",
			a.Symbol, a.Price, target, stop, riskReward)
	}
	sb.WriteString("\n")
}

func writePortfolio(sb *strings.Builder, res *scanner.Result, quotes map[string]float64) {
	w := res.Wallet

	sb.WriteString("PORTFOLIO\n")
	fmt.Fprintf(sb, "  capital %.2f  balance %.2f  invested %.2f  realized pnl %+.2f\n",
		w.Capital, w.Balance, w.Invested(), w.RealizedPnl())

	if len(w.Positions) > 0 {
		sb.WriteString("  open positions:\n")
		for _, p := range w.Positions {
			price, ok := quotes[p.Symbol]
			if !ok {
				price = p.EntryPrice
			}
			fmt.Fprintf(sb, "    %-14s qty %-5d entry %.2f  last %.2f  pnl %+.2f (%+.2f%%)\n",
				p.Symbol, p.Quantity, p.EntryPrice, price,
				p.UnrealizedPnl(price), p.UnrealizedPnlPercent(price)*100)
		}
	}

	for _, p := range res.Closed {
		fmt.Fprintf(sb, "  closed today: %-14s %s at %.2f  pnl %+.2f\n",
			p.Symbol, exitLabel(p.Status), p.ExitPrice, p.RealizedPnl)
	}
	for _, p := range res.Opened {
		fmt.Fprintf(sb, "  opened today: %-14s qty %d at %.2f (stop %.2f, target %.2f)\n",
			p.Symbol, p.Quantity, p.EntryPrice, p.StopLoss, p.Target)
	}
}

func exitLabel(s ledger.Status) string {
	switch s {
	case ledger.StatusTarget:
		return "hit target"
	case ledger.StatusStopLoss:
		return "stopped out"
	default:
		return string(s)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
