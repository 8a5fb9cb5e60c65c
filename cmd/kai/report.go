package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kaiquant/kai/internal/config"
	"github.com/kaiquant/kai/internal/logger"
	"github.com/kaiquant/kai/internal/report"
	"github.com/kaiquant/kai/internal/scanner"
	"github.com/kaiquant/kai/internal/scoring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportArchive bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a scan and print the daily report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "also write the report to the archive backend")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	res, err := runCycle(cmd.Context(), cfg, log, nil)
	if err != nil {
		return err
	}

	text := renderReport(cmd.Context(), cfg, res, log)
	fmt.Print(text)

	if reportArchive {
		storage, err := buildStorage(cfg)
		if err != nil {
			return err
		}
		store := ledgerStore(cfg)
		m := archiveMirror(storage, store, nil, cfg, log)
		path, err := m.WriteReport(cmd.Context(), text, time.Now())
		if err != nil {
			return err
		}
		log.Info("report archived", zap.String("path", path))
	}
	return nil
}

// renderReport fetches quotes for the open book and renders the text.
func renderReport(ctx context.Context, cfg *config.Config, res *scanner.Result, log *zap.Logger) string {
	engine := scoring.NewEngine(scoring.Config{
		BuyThreshold:  cfg.Scan.BuyThreshold,
		SellThreshold: cfg.Scan.SellThreshold,
	})

	quotes := map[string]float64{}
	if provider, err := buildProvider(cfg); err == nil {
		for _, p := range res.Wallet.Positions {
			qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if price, err := provider.LastPrice(qctx, p.Symbol); err == nil {
				quotes[p.Symbol] = price
			} else {
				log.Debug("quote unavailable", zap.String("symbol", p.Symbol), zap.Error(err))
			}
			cancel()
		}
	}

	return report.Render(report.Data{
		Result: res,
		Buys:   engine.Buys(res.Analyses),
		Sells:  engine.Sells(res.Analyses),
		Quotes: quotes,
	})
}
