// Package ledger owns the paper-trading wallet: the cash balance, open
// positions, and closed-trade history. It is the single point of truth
// for capital conservation; no other package mutates these fields.
package ledger

import (
	"math"
	"time"
)

// Status is the lifecycle state of a position. OPEN transitions to
// TARGET or SL; both are terminal.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusTarget   Status = "TARGET"
	StatusStopLoss Status = "SL"
)

// Exit levels relative to the entry price: 3% stop, 10% target.
const (
	stopLossRatio = 0.97
	targetRatio   = 1.10
)

// Position is a simulated trade. It is created only by Open, mutated
// only by closing, and immutable once closed.
type Position struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	EntryPrice  float64    `json:"entry_price"`
	Quantity    int64      `json:"qty"`
	Cost        float64    `json:"cost"`
	StopLoss    float64    `json:"stop_loss"`
	Target      float64    `json:"target"`
	EntryTime   time.Time  `json:"entry_time"`
	Status      Status     `json:"status"`
	ExitPrice   float64    `json:"exit_price,omitempty"`
	ExitTime    *time.Time `json:"exit_time,omitempty"`
	RealizedPnl float64    `json:"pnl"`
}

// UnrealizedPnl returns the live P&L of an open position at the given
// price. Renderers recompute this; it is never persisted.
func (p Position) UnrealizedPnl(currentPrice float64) float64 {
	return (currentPrice - p.EntryPrice) * float64(p.Quantity)
}

// UnrealizedPnlPercent returns the live fractional P&L at the given price.
func (p Position) UnrealizedPnlPercent(currentPrice float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return currentPrice/p.EntryPrice - 1
}

// Wallet is the persisted ledger document. Capital is set once at
// creation; Balance holds cash not tied up in open positions.
//
// Invariant: Balance + sum(cost of open positions) + sum(pnl of closed
// trades) == Capital at every observable instant.
type Wallet struct {
	Capital   float64    `json:"capital"`
	Balance   float64    `json:"balance"`
	Positions []Position `json:"positions"`
	Trades    []Position `json:"trades"`
}

// New creates a wallet with the full capital as cash.
func New(capital float64) *Wallet {
	return &Wallet{
		Capital:   capital,
		Balance:   capital,
		Positions: []Position{},
		Trades:    []Position{},
	}
}

// Position returns the open position with the given id.
func (w *Wallet) Position(id string) (Position, bool) {
	for _, p := range w.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// Invested returns the total cost held out of balance by open positions.
func (w *Wallet) Invested() float64 {
	var total float64
	for _, p := range w.Positions {
		total += p.Cost
	}
	return total
}

// RealizedPnl returns the total realized P&L of closed trades.
func (w *Wallet) RealizedPnl() float64 {
	var total float64
	for _, t := range w.Trades {
		total += t.RealizedPnl
	}
	return total
}

// ConservesCapital reports whether the capital-conservation invariant
// holds, within floating-point tolerance.
func (w *Wallet) ConservesCapital() bool {
	return math.Abs(w.Balance+w.Invested()+w.RealizedPnl()-w.Capital) < 1e-6
}

// round2 rounds to 2-decimal currency granularity.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
