// Package market defines the market-data provider boundary. The core
// never fetches data itself; providers fail with
// core.ErrDataUnavailable and callers skip the symbol or position for
// that cycle rather than propagate.
package market

import (
	"context"

	"github.com/kaiquant/kai/internal/core"
)

// Provider fetches price series and fundamentals for a symbol.
type Provider interface {
	// Name identifies the provider in logs and config.
	Name() string

	// DailySeries returns up to lookback daily bars, oldest first.
	DailySeries(ctx context.Context, symbol string, lookback int) (core.Series, error)

	// WeeklySeries returns up to lookback weekly bars, oldest first.
	WeeklySeries(ctx context.Context, symbol string, lookback int) (core.Series, error)

	// Fundamentals returns the fundamental snapshot. Absent fields
	// are zero.
	Fundamentals(ctx context.Context, symbol string) (core.Fundamental, error)

	// LastPrice returns the most recent traded price.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}
