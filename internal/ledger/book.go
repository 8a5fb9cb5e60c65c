package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/kaiquant/kai/internal/core"
)

// Open opens a simulated position: cost is deducted from the balance,
// the stop-loss and target levels are fixed from the entry price.
// Returns core.ErrInsufficientFunds, with the wallet untouched, when
// cost exceeds the balance. Multiple open positions on the same symbol
// are permitted.
func (w *Wallet) Open(symbol string, entryPrice float64, quantity int64, now time.Time) (Position, error) {
	cost := entryPrice * float64(quantity)
	if cost > w.Balance {
		return Position{}, core.ErrInsufficientFunds
	}

	p := Position{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Cost:       cost,
		StopLoss:   round2(entryPrice * stopLossRatio),
		Target:     round2(entryPrice * targetRatio),
		EntryTime:  now,
		Status:     StatusOpen,
	}

	w.Balance -= cost
	w.Positions = append(w.Positions, p)
	return p, nil
}

// Evaluate checks the open position with the given id against one
// price observation. The stop-loss is checked before the target, and a
// close always realizes exactly the threshold level, not the observed
// price: pnl = (threshold - entry) * qty, and cost + pnl returns to the
// balance. Returns the closed trade, or ok=false when the position
// stays open (or the id is unknown).
func (w *Wallet) Evaluate(id string, currentPrice float64, now time.Time) (Position, bool) {
	for i, p := range w.Positions {
		if p.ID != id {
			continue
		}

		switch {
		case currentPrice <= p.StopLoss:
			return w.close(i, p.StopLoss, StatusStopLoss, now), true
		case currentPrice >= p.Target:
			return w.close(i, p.Target, StatusTarget, now), true
		}
		return Position{}, false
	}
	return Position{}, false
}

// close moves the position at index i into the trade history.
func (w *Wallet) close(i int, exitPrice float64, status Status, now time.Time) Position {
	p := w.Positions[i]

	pnl := (exitPrice - p.EntryPrice) * float64(p.Quantity)
	p.ExitPrice = exitPrice
	p.ExitTime = &now
	p.RealizedPnl = pnl
	p.Status = status

	w.Balance += p.Cost + pnl
	w.Positions = append(w.Positions[:i], w.Positions[i+1:]...)
	w.Trades = append(w.Trades, p)
	return p
}
