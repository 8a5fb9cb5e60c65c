// Package scanner runs the daily cycle: score the configured universe,
// settle open paper positions against fresh prices, and optionally
// open new positions on the strongest setups.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/kaiquant/kai/internal/config"
	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/market"
	"github.com/kaiquant/kai/internal/metrics"
	"github.com/kaiquant/kai/internal/scoring"
	"go.uber.org/zap"
)

// Scanner wires the provider, scoring engine and ledger store into one
// cycle. The ledger is touched by a single goroutine; only the
// per-symbol analysis fans out.
type Scanner struct {
	provider market.Provider
	engine   *scoring.Engine
	store    *ledger.Store
	cfg      *config.Config
	log      *zap.Logger
	reg      *metrics.Registry
}

// New creates a scanner. reg may be nil when metrics are disabled.
func New(provider market.Provider, engine *scoring.Engine, store *ledger.Store, cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *Scanner {
	return &Scanner{
		provider: provider,
		engine:   engine,
		store:    store,
		cfg:      cfg,
		log:      log,
		reg:      reg,
	}
}

// Skip records a symbol left out of a cycle and why.
type Skip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Result is the outcome of one scan cycle.
type Result struct {
	Analyses []scoring.Analysis `json:"analyses"`
	Skipped  []Skip             `json:"skipped,omitempty"`
	Closed   []ledger.Position  `json:"closed,omitempty"`
	Opened   []ledger.Position  `json:"opened,omitempty"`
	Wallet   *ledger.Wallet     `json:"wallet"`
	Started  time.Time          `json:"started"`
	Duration time.Duration      `json:"duration"`
}

// Run executes one full cycle and persists the ledger once at the end.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	entries := s.cfg.Symbols()

	if s.reg != nil {
		s.reg.SetUniverseSize(len(entries))
	}

	analyses, skipped := s.analyzeUniverse(ctx, entries)
	scoring.Rank(analyses)

	w, err := s.store.Load(s.cfg.Ledger.Capital)
	if err != nil {
		return nil, err
	}

	closed := s.settlePositions(ctx, w, time.Now())

	var opened []ledger.Position
	if s.cfg.Scan.AutoTrade {
		opened = s.openSetups(w, analyses, time.Now())
	}

	if err := s.store.Save(w); err != nil {
		return nil, err
	}

	res := &Result{
		Analyses: analyses,
		Skipped:  skipped,
		Closed:   closed,
		Opened:   opened,
		Wallet:   w,
		Started:  start,
		Duration: time.Since(start),
	}

	if s.reg != nil {
		s.reg.RecordScanCycle(res.Duration.Seconds())
		s.reg.SetWalletState(len(w.Positions), w.Balance)
		for _, a := range s.engine.Buys(analyses) {
			s.reg.RecordSignal(a.Category, "buy")
		}
		for _, a := range s.engine.Sells(analyses) {
			s.reg.RecordSignal(a.Category, "sell")
		}
	}

	s.log.Info("scan cycle complete",
		zap.Int("scored", len(analyses)),
		zap.Int("skipped", len(skipped)),
		zap.Int("closed", len(closed)),
		zap.Int("opened", len(opened)),
		zap.Duration("duration", res.Duration))

	return res, nil
}

// analyzeUniverse scores every universe symbol with a bounded worker
// pool. Results come back in universe enumeration order so that
// rank ties stay deterministic.
func (s *Scanner) analyzeUniverse(ctx context.Context, entries []config.UniverseEntry) ([]scoring.Analysis, []Skip) {
	type slot struct {
		analysis scoring.Analysis
		skip     *Skip
	}
	slots := make([]slot, len(entries))

	sem := make(chan struct{}, s.cfg.Scan.Workers)
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, e config.UniverseEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			a, err := s.analyzeSymbol(ctx, e)
			if err != nil {
				slots[i].skip = &Skip{Symbol: e.Symbol, Reason: err.Error()}
				return
			}
			slots[i].analysis = a
		}(i, e)
	}
	wg.Wait()

	analyses := make([]scoring.Analysis, 0, len(entries))
	var skipped []Skip
	for _, sl := range slots {
		if sl.skip != nil {
			skipped = append(skipped, *sl.skip)
			if s.reg != nil {
				s.reg.RecordSymbol("skipped")
			}
			continue
		}
		analyses = append(analyses, sl.analysis)
		if s.reg != nil {
			s.reg.RecordSymbol("ok")
		}
	}
	return analyses, skipped
}

func (s *Scanner) analyzeSymbol(ctx context.Context, e config.UniverseEntry) (scoring.Analysis, error) {
	daily, err := s.provider.DailySeries(ctx, e.Symbol, s.cfg.Scan.DailyLookback)
	if err != nil {
		s.log.Warn("daily series unavailable",
			zap.String("symbol", e.Symbol), zap.Error(err))
		return scoring.Analysis{}, err
	}
	if len(daily) < s.cfg.Scan.MinHistory {
		return scoring.Analysis{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("only %d daily bars, need %d", len(daily), s.cfg.Scan.MinHistory))
	}

	weekly, err := s.provider.WeeklySeries(ctx, e.Symbol, s.cfg.Scan.WeeklyLookback)
	if err != nil {
		// Weekly trend degrades to NEUTRAL without bars.
		s.log.Debug("weekly series unavailable",
			zap.String("symbol", e.Symbol), zap.Error(err))
		weekly = nil
	}

	f, err := s.provider.Fundamentals(ctx, e.Symbol)
	if err != nil {
		// Fundamental rules are all gated on non-zero fields, so a
		// zero snapshot just scores nothing there.
		s.log.Debug("fundamentals unavailable",
			zap.String("symbol", e.Symbol), zap.Error(err))
		f = core.Fundamental{}
	}

	return s.engine.Analyze(e.Symbol, e.Category, daily, weekly, f), nil
}

// settlePositions re-prices every open position and closes the ones
// that crossed their stop or target. Positions whose price cannot be
// fetched are left untouched for this cycle.
func (s *Scanner) settlePositions(ctx context.Context, w *ledger.Wallet, now time.Time) []ledger.Position {
	// Snapshot the ids first: Evaluate mutates w.Positions.
	ids := make([]string, 0, len(w.Positions))
	symbols := make(map[string]string, len(w.Positions))
	for _, p := range w.Positions {
		ids = append(ids, p.ID)
		symbols[p.ID] = p.Symbol
	}

	var closed []ledger.Position
	for _, id := range ids {
		price, err := s.provider.LastPrice(ctx, symbols[id])
		if err != nil {
			s.log.Warn("price unavailable, position carried",
				zap.String("symbol", symbols[id]), zap.Error(err))
			continue
		}

		p, done := w.Evaluate(id, price, now)
		if !done {
			continue
		}
		closed = append(closed, p)
		if s.reg != nil {
			s.reg.RecordPositionClosed(string(p.Status))
		}
		s.log.Info("position closed",
			zap.String("symbol", p.Symbol),
			zap.String("status", string(p.Status)),
			zap.Float64("exit", p.ExitPrice),
			zap.Float64("pnl", p.RealizedPnl))
	}
	return closed
}

// openSetups opens paper positions on the top-ranked buy signals, one
// per symbol, until the trade cap or the balance runs out.
func (s *Scanner) openSetups(w *ledger.Wallet, analyses []scoring.Analysis, now time.Time) []ledger.Position {
	held := make(map[string]bool, len(w.Positions))
	for _, p := range w.Positions {
		held[p.Symbol] = true
	}

	var opened []ledger.Position
	for _, a := range s.engine.Buys(analyses) {
		if len(opened) >= s.cfg.Scan.MaxNewTrades {
			break
		}
		if held[a.Symbol] || a.Price <= 0 {
			continue
		}

		qty := int64(math.Floor(s.cfg.Scan.PositionBudget / a.Price))
		if qty < 1 {
			continue
		}

		p, err := w.Open(a.Symbol, a.Price, qty, now)
		if err != nil {
			if errors.Is(err, core.ErrInsufficientFunds) {
				s.log.Info("skipping setup, balance exhausted",
					zap.String("symbol", a.Symbol))
				continue
			}
			s.log.Warn("open failed",
				zap.String("symbol", a.Symbol), zap.Error(err))
			continue
		}

		held[a.Symbol] = true
		opened = append(opened, p)
		if s.reg != nil {
			s.reg.RecordPositionOpened()
		}
		s.log.Info("position opened",
			zap.String("symbol", p.Symbol),
			zap.Float64("entry", p.EntryPrice),
			zap.Int64("quantity", p.Quantity),
			zap.Float64("stop", p.StopLoss),
			zap.Float64("target", p.Target))
	}
	return opened
}
