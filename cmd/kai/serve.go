package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaiquant/kai/internal/api"
	"github.com/kaiquant/kai/internal/logger"
	"github.com/kaiquant/kai/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the KAI dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	log.Info("starting KAI dashboard",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	server := api.NewServer(api.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Capital: cfg.Ledger.Capital,
	}, ledgerStore(cfg), provider, reg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down KAI dashboard")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
