package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kaiquant/kai/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Ledger   LedgerConfig        `mapstructure:"ledger"`
	Scan     ScanConfig          `mapstructure:"scan"`
	Universe map[string][]string `mapstructure:"universe"`
	Provider ProviderConfig      `mapstructure:"provider"`
	Server   ServerConfig        `mapstructure:"server"`
	Archive  ArchiveConfig       `mapstructure:"archive"`
	Metrics  MetricsConfig       `mapstructure:"metrics"`
	Watch    WatchConfig         `mapstructure:"watch"`
}

// LedgerConfig locates the wallet document and sets first-run capital.
type LedgerConfig struct {
	Path    string  `mapstructure:"path"`
	Capital float64 `mapstructure:"capital"`
}

// ScanConfig tunes the universe scan and paper-trading behavior.
type ScanConfig struct {
	BuyThreshold   int     `mapstructure:"buy_threshold"`
	SellThreshold  int     `mapstructure:"sell_threshold"`
	DailyLookback  int     `mapstructure:"daily_lookback"`
	WeeklyLookback int     `mapstructure:"weekly_lookback"`
	MinHistory     int     `mapstructure:"min_history"`
	Workers        int     `mapstructure:"workers"`
	AutoTrade      bool    `mapstructure:"auto_trade"`
	PositionBudget float64 `mapstructure:"position_budget"`
	MaxNewTrades   int     `mapstructure:"max_new_trades"`
}

type ProviderConfig struct {
	Name string `mapstructure:"name"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ArchiveConfig selects the ledger mirror backend.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WatchConfig holds the cron schedule for unattended daily runs.
type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path:    "data/wallet.json",
			Capital: 100000,
		},
		Scan: ScanConfig{
			BuyThreshold:   3,
			SellThreshold:  -1,
			DailyLookback:  260,
			WeeklyLookback: 104,
			MinHistory:     50,
			Workers:        8,
			AutoTrade:      false,
			PositionBudget: 10000,
			MaxNewTrades:   3,
		},
		Provider: ProviderConfig{
			Name: "yahoo",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "data/archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Watch: WatchConfig{
			// Weekdays at 15:45, after market close.
			Schedule: "0 45 15 * * 1-5",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Ledger.Capital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ledger capital must be positive, got %f", c.Ledger.Capital))
	}
	if c.Ledger.Path == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("ledger path is required"))
	}

	if c.Scan.BuyThreshold <= c.Scan.SellThreshold {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_threshold (%d) must be above sell_threshold (%d)",
				c.Scan.BuyThreshold, c.Scan.SellThreshold))
	}
	if c.Scan.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be at least 1, got %d", c.Scan.Workers))
	}
	if c.Scan.AutoTrade && c.Scan.PositionBudget <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_budget must be positive when auto_trade is enabled"))
	}

	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type: %s", c.Archive.Type))
	}

	return nil
}

// Symbols flattens the universe into (category, symbol) pairs in a
// stable order: categories sorted, symbols in config order. Duplicate
// symbols across categories are kept; each is scored in its category.
func (c *Config) Symbols() []UniverseEntry {
	categories := make([]string, 0, len(c.Universe))
	for cat := range c.Universe {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var out []UniverseEntry
	for _, cat := range categories {
		for _, sym := range c.Universe[cat] {
			out = append(out, UniverseEntry{Category: cat, Symbol: sym})
		}
	}
	return out
}

// UniverseEntry is one symbol of the configured universe.
type UniverseEntry struct {
	Category string
	Symbol   string
}
