package main

import (
	"context"
	"fmt"

	"github.com/kaiquant/kai/internal/config"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/logger"
	"github.com/kaiquant/kai/internal/metrics"
	"github.com/kaiquant/kai/internal/scanner"
	"github.com/kaiquant/kai/internal/scoring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanTrade bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score the universe and settle open paper positions",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanTrade, "trade", false, "open positions on top setups regardless of config")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if scanTrade {
		cfg.Scan.AutoTrade = true
	}

	res, err := runCycle(cmd.Context(), cfg, log, nil)
	if err != nil {
		return err
	}

	engine := scoring.NewEngine(scoring.Config{
		BuyThreshold:  cfg.Scan.BuyThreshold,
		SellThreshold: cfg.Scan.SellThreshold,
	})
	fmt.Printf("scored %d symbols (%d skipped): %d buys, %d sells\n",
		len(res.Analyses), len(res.Skipped),
		len(engine.Buys(res.Analyses)), len(engine.Sells(res.Analyses)))
	for _, p := range res.Closed {
		fmt.Printf("closed %s (%s) pnl %+.2f\n", p.Symbol, p.Status, p.RealizedPnl)
	}
	for _, p := range res.Opened {
		fmt.Printf("opened %s qty %d at %.2f\n", p.Symbol, p.Quantity, p.EntryPrice)
	}
	fmt.Printf("wallet: balance %.2f, invested %.2f, realized pnl %+.2f\n",
		res.Wallet.Balance, res.Wallet.Invested(), res.Wallet.RealizedPnl())
	return nil
}

// runCycle wires one full scan out of the config. reg may be nil for
// one-shot commands; the watch loop passes a live registry.
func runCycle(ctx context.Context, cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*scanner.Result, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(scoring.Config{
		BuyThreshold:  cfg.Scan.BuyThreshold,
		SellThreshold: cfg.Scan.SellThreshold,
	})
	store := ledger.NewStore(cfg.Ledger.Path)

	s := scanner.New(provider, engine, store, cfg, log, reg)
	return s.Run(ctx)
}
