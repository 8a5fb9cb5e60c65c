package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kaiquant/kai/internal/ledger"
	"go.uber.org/zap"
)

// PortfolioView summarizes the wallet for the dashboard.
type PortfolioView struct {
	Capital       float64 `json:"capital"`
	Balance       float64 `json:"balance"`
	Invested      float64 `json:"invested"`
	RealizedPnl   float64 `json:"realized_pnl"`
	OpenPositions int     `json:"open_positions"`
	ClosedTrades  int     `json:"closed_trades"`
}

// PositionView is an open position with a live valuation.
type PositionView struct {
	ledger.Position
	LastPrice     float64 `json:"last_price"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
}

func (s *Server) loadWallet(w http.ResponseWriter) (*ledger.Wallet, bool) {
	wallet, err := s.store.Load(s.cfg.Capital)
	if err != nil {
		s.logger.Error("loading ledger", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return wallet, true
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.loadWallet(w)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, PortfolioView{
		Capital:       wallet.Capital,
		Balance:       wallet.Balance,
		Invested:      wallet.Invested(),
		RealizedPnl:   wallet.RealizedPnl(),
		OpenPositions: len(wallet.Positions),
		ClosedTrades:  len(wallet.Trades),
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.loadWallet(w)
	if !ok {
		return
	}

	views := make([]PositionView, 0, len(wallet.Positions))
	for _, p := range wallet.Positions {
		price := p.EntryPrice
		if s.provider != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			if last, err := s.provider.LastPrice(ctx, p.Symbol); err == nil {
				price = last
			}
			cancel()
		}
		views = append(views, PositionView{
			Position:      p,
			LastPrice:     price,
			UnrealizedPnl: p.UnrealizedPnl(price),
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.loadWallet(w)
	if !ok {
		return
	}
	if wallet.Trades == nil {
		wallet.Trades = []ledger.Position{}
	}
	writeJSON(w, http.StatusOK, wallet.Trades)
}
