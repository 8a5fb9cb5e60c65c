package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/kaiquant/kai/internal/market"
	"go.uber.org/zap"
)

const (
	snapshotPrefix = "snapshots"
	reportPrefix   = "reports"
	latestKey      = "wallet.json"
)

// Mirror copies ledger state into cold storage. Each sync writes a
// dated snapshot plus the rolling latest copy, so the bucket holds a
// full history while wallet.json always points at today.
type Mirror struct {
	storage  Storage
	store    *ledger.Store
	provider market.Provider // Optional; valuations are skipped when nil.
	capital  float64
	log      *zap.Logger
}

// NewMirror creates a mirror over the given backend.
func NewMirror(storage Storage, store *ledger.Store, provider market.Provider, capital float64, log *zap.Logger) *Mirror {
	return &Mirror{
		storage:  storage,
		store:    store,
		provider: provider,
		capital:  capital,
		log:      log,
	}
}

// Valuation is a live re-pricing of one open position, embedded in the
// archived snapshot.
type Valuation struct {
	Symbol        string  `json:"symbol"`
	LastPrice     float64 `json:"last_price"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
}

// Snapshot is the archived document: the wallet plus a timestamp and,
// when a provider is wired, fresh valuations of the open book.
type Snapshot struct {
	ledger.Wallet
	AsOf       time.Time   `json:"as_of"`
	Valuations []Valuation `json:"valuations,omitempty"`
}

// Sync archives the current ledger document. It returns the snapshot
// path written.
func (m *Mirror) Sync(ctx context.Context, now time.Time) (string, error) {
	w, err := m.store.Load(m.capital)
	if err != nil {
		return "", err
	}

	doc := Snapshot{Wallet: *w, AsOf: now.UTC()}
	if m.provider != nil {
		for _, p := range w.Positions {
			price, err := m.provider.LastPrice(ctx, p.Symbol)
			if err != nil {
				m.log.Warn("valuation skipped",
					zap.String("symbol", p.Symbol), zap.Error(err))
				continue
			}
			doc.Valuations = append(doc.Valuations, Valuation{
				Symbol:        p.Symbol,
				LastPrice:     price,
				UnrealizedPnl: p.UnrealizedPnl(price),
			})
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	// Storage errors already carry the ARCHIVE_FAILED code.
	snapshot := fmt.Sprintf("%s/wallet-%s.json", snapshotPrefix, now.Format("2006-01-02"))
	if err := m.storage.Write(ctx, snapshot, data); err != nil {
		return "", err
	}
	if err := m.storage.Write(ctx, latestKey, data); err != nil {
		return "", err
	}

	m.log.Info("ledger archived",
		zap.String("snapshot", snapshot),
		zap.Int("open_positions", len(w.Positions)),
		zap.Int("trades", len(w.Trades)))
	return snapshot, nil
}

// WriteReport archives a rendered daily report.
func (m *Mirror) WriteReport(ctx context.Context, text string, now time.Time) (string, error) {
	path := fmt.Sprintf("%s/report-%s.txt", reportPrefix, now.Format("2006-01-02"))
	if err := m.storage.Write(ctx, path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}

// Prune deletes the oldest snapshots beyond keep. Snapshot names sort
// by date, so lexicographic order is chronological.
func (m *Mirror) Prune(ctx context.Context, keep int) (int, error) {
	paths, err := m.storage.List(ctx, snapshotPrefix)
	if err != nil {
		return 0, err
	}

	var snapshots []string
	for _, p := range paths {
		if strings.HasSuffix(p, ".json") {
			snapshots = append(snapshots, p)
		}
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	sort.Strings(snapshots)
	stale := snapshots[:len(snapshots)-keep]
	removed := 0
	for _, p := range stale {
		if err := m.storage.Delete(ctx, p); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		m.log.Info("pruned old snapshots", zap.Int("removed", removed))
	}
	return removed, nil
}
