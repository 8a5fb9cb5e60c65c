package main

import (
	"fmt"
	"time"

	"github.com/kaiquant/kai/internal/archive"
	"github.com/kaiquant/kai/internal/config"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/logger"
	"github.com/kaiquant/kai/internal/market"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncKeep int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the ledger to the archive backend",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncKeep, "keep", 0, "prune snapshots beyond this count (0 keeps all)")
	rootCmd.AddCommand(syncCmd)
}

func ledgerStore(cfg *config.Config) *ledger.Store {
	return ledger.NewStore(cfg.Ledger.Path)
}

func archiveMirror(storage archive.Storage, store *ledger.Store, provider market.Provider, cfg *config.Config, log *zap.Logger) *archive.Mirror {
	return archive.NewMirror(storage, store, provider, cfg.Ledger.Capital, log)
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	storage, err := buildStorage(cfg)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	m := archiveMirror(storage, ledgerStore(cfg), provider, cfg, log)
	snapshot, err := m.Sync(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("archived %s\n", snapshot)

	if syncKeep > 0 {
		removed, err := m.Prune(cmd.Context(), syncKeep)
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Printf("pruned %d old snapshots\n", removed)
		}
	}
	return nil
}
