package main

import (
	"fmt"
	"os"

	"github.com/kaiquant/kai/internal/archive"
	"github.com/kaiquant/kai/internal/config"
	"github.com/kaiquant/kai/internal/market"
	"github.com/kaiquant/kai/internal/market/yahoo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "kai",
	Short: "KAI - indicator scoring and paper trading for NSE equities",
	Long: `KAI scores a configurable universe of stocks on daily technical
indicators and fundamentals, tracks simulated positions with fixed
stop and target levels, and keeps the paper wallet in a JSON ledger.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig resolves the effective config, falling back to defaults
// when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildProvider(cfg *config.Config) (market.Provider, error) {
	switch cfg.Provider.Name {
	case "", "yahoo":
		return yahoo.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider.Name)
	}
}

func buildStorage(cfg *config.Config) (archive.Storage, error) {
	switch cfg.Archive.Type {
	case "", "localfs":
		return archive.NewLocalFS(cfg.Archive.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Archive.Type)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
