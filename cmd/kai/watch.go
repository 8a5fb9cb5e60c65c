package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaiquant/kai/internal/logger"
	"github.com/kaiquant/kai/internal/metrics"
)

var watchArchive bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daily cycle on the configured schedule",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchArchive, "archive", false, "mirror the ledger after each cycle")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	// Validate the archive wiring up front rather than at 15:45.
	if watchArchive {
		if _, err := buildStorage(cfg); err != nil {
			return err
		}
	}

	var reg *metrics.Registry
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: mux,
		}
		go func() {
			log.Info("metrics listening",
				zap.String("addr", metricsSrv.Addr),
				zap.String("path", cfg.Metrics.Path))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc(cfg.Watch.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		res, err := runCycle(ctx, cfg, log, reg)
		if err != nil {
			log.Error("scheduled cycle failed", zap.Error(err))
			return
		}
		log.Info("scheduled cycle done",
			zap.Int("scored", len(res.Analyses)),
			zap.Int("closed", len(res.Closed)),
			zap.Int("opened", len(res.Opened)))

		if !watchArchive {
			return
		}
		storage, err := buildStorage(cfg)
		if err != nil {
			log.Error("archive backend unavailable", zap.Error(err))
			return
		}
		provider, err := buildProvider(cfg)
		if err != nil {
			log.Error("provider unavailable", zap.Error(err))
			return
		}
		m := archiveMirror(storage, ledgerStore(cfg), provider, cfg, log)
		if _, err := m.Sync(ctx, time.Now()); err != nil {
			log.Error("ledger mirror failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	log.Info("watching", zap.String("schedule", cfg.Watch.Schedule))
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stopping watcher")
	<-c.Stop().Done()

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Error("metrics server shutdown failed", zap.Error(err))
		}
	}
	return nil
}
