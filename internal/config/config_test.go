package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kaiquant/kai/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
ledger:
  path: /var/lib/kai/wallet.json
  capital: 250000
scan:
  buy_threshold: 4
  workers: 4
  auto_trade: true
  position_budget: 25000
universe:
  banking:
    - HDFCBANK.NS
    - ICICIBANK.NS
  it:
    - INFY.NS
server:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/kai/wallet.json", cfg.Ledger.Path)
	assert.Equal(t, 250000.0, cfg.Ledger.Capital)
	assert.Equal(t, 4, cfg.Scan.BuyThreshold)
	assert.True(t, cfg.Scan.AutoTrade)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Unset keys keep defaults.
	assert.Equal(t, -1, cfg.Scan.SellThreshold)
	assert.Equal(t, 260, cfg.Scan.DailyLookback)
	assert.Equal(t, "yahoo", cfg.Provider.Name)
	assert.Equal(t, "localfs", cfg.Archive.Type)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("KAI_TEST_BUCKET", "kai-ledger-backups")
	path := writeConfig(t, `
archive:
  type: s3
  s3:
    bucket: ${KAI_TEST_BUCKET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "kai-ledger-backups", cfg.Archive.S3.Bucket)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults ok", func(c *Config) {}, nil},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"zero capital", func(c *Config) { c.Ledger.Capital = 0 }, core.ErrConfigInvalid},
		{"empty ledger path", func(c *Config) { c.Ledger.Path = "" }, core.ErrConfigMissing},
		{"thresholds crossed", func(c *Config) { c.Scan.BuyThreshold = -2 }, core.ErrConfigInvalid},
		{"no workers", func(c *Config) { c.Scan.Workers = 0 }, core.ErrConfigInvalid},
		{"auto trade without budget", func(c *Config) {
			c.Scan.AutoTrade = true
			c.Scan.PositionBudget = 0
		}, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Archive.Type = "s3" }, core.ErrConfigMissing},
		{"unknown archive type", func(c *Config) { c.Archive.Type = "ftp" }, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSymbols(t *testing.T) {
	cfg := Defaults()
	cfg.Universe = map[string][]string{
		"it":      {"INFY.NS", "TCS.NS"},
		"banking": {"HDFCBANK.NS"},
	}

	got := cfg.Symbols()
	want := []UniverseEntry{
		{Category: "banking", Symbol: "HDFCBANK.NS"},
		{Category: "it", Symbol: "INFY.NS"},
		{Category: "it", Symbol: "TCS.NS"},
	}
	assert.Equal(t, want, got)
}
