package archive

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMirror(t *testing.T) (*Mirror, *LocalFS, *ledger.Store) {
	t.Helper()
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	store := ledger.NewStore(filepath.Join(t.TempDir(), "wallet.json"))
	return NewMirror(fs, store, nil, 100000, zap.NewNop()), fs, store
}

func TestMirror_Sync(t *testing.T) {
	m, fs, store := testMirror(t)
	ctx := context.Background()

	w := ledger.New(100000)
	now := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)
	_, err := w.Open("INFY.NS", 1000, 4, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(w))

	snapshot, err := m.Sync(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "snapshots/wallet-2025-06-02.json", snapshot)

	// Both the dated snapshot and the rolling copy hold the wallet.
	for _, path := range []string{snapshot, "wallet.json"} {
		data, err := fs.Read(ctx, path)
		require.NoError(t, err)

		var got ledger.Wallet
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, 100000.0, got.Capital)
		require.Len(t, got.Positions, 1)
		assert.Equal(t, "INFY.NS", got.Positions[0].Symbol)
	}
}

func TestMirror_Sync_FirstRunLedger(t *testing.T) {
	// A missing ledger file archives as a fresh wallet.
	m, fs, _ := testMirror(t)
	ctx := context.Background()

	_, err := m.Sync(ctx, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	data, err := fs.Read(ctx, "wallet.json")
	require.NoError(t, err)

	var got ledger.Wallet
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 100000.0, got.Balance)
}

func TestMirror_WriteReport(t *testing.T) {
	m, fs, _ := testMirror(t)
	ctx := context.Background()

	path, err := m.WriteReport(ctx, "KAI Daily Report", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "reports/report-2025-06-02.txt", path)

	data, err := fs.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "KAI Daily Report", string(data))
}

func TestMirror_Prune(t *testing.T) {
	m, fs, store := testMirror(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ledger.New(100000)))

	for day := 1; day <= 5; day++ {
		_, err := m.Sync(ctx, time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	removed, err := m.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	paths, err := fs.List(ctx, "snapshots")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	// The newest snapshots survive.
	assert.Contains(t, paths, "snapshots/wallet-2025-06-04.json")
	assert.Contains(t, paths, "snapshots/wallet-2025-06-05.json")
}

func TestMirror_PruneUnderLimit(t *testing.T) {
	m, _, store := testMirror(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ledger.New(100000)))

	_, err := m.Sync(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	removed, err := m.Prune(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

type failingStorage struct {
	LocalFS
}

func (f *failingStorage) Write(context.Context, string, []byte) error {
	return core.WrapError(core.ErrArchiveFailed, assert.AnError)
}

func TestMirror_Sync_WriteFailure(t *testing.T) {
	store := ledger.NewStore(filepath.Join(t.TempDir(), "wallet.json"))
	require.NoError(t, store.Save(ledger.New(100000)))

	m := NewMirror(&failingStorage{}, store, nil, 100000, zap.NewNop())
	_, err := m.Sync(context.Background(), time.Now())
	assert.ErrorIs(t, err, core.ErrArchiveFailed)
}

type staticQuotes map[string]float64

func (q staticQuotes) Name() string { return "static" }

func (q staticQuotes) DailySeries(context.Context, string, int) (core.Series, error) {
	return nil, core.ErrDataUnavailable
}

func (q staticQuotes) WeeklySeries(context.Context, string, int) (core.Series, error) {
	return nil, core.ErrDataUnavailable
}

func (q staticQuotes) Fundamentals(context.Context, string) (core.Fundamental, error) {
	return core.Fundamental{}, core.ErrDataUnavailable
}

func (q staticQuotes) LastPrice(_ context.Context, symbol string) (float64, error) {
	p, ok := q[symbol]
	if !ok {
		return 0, core.ErrDataUnavailable
	}
	return p, nil
}

func TestMirror_Sync_Valuations(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	store := ledger.NewStore(filepath.Join(t.TempDir(), "wallet.json"))

	w := ledger.New(100000)
	now := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)
	_, err = w.Open("INFY.NS", 1000, 4, now)
	require.NoError(t, err)
	_, err = w.Open("DARK.NS", 500, 2, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(w))

	m := NewMirror(fs, store, staticQuotes{"INFY.NS": 1050}, 100000, zap.NewNop())
	_, err = m.Sync(context.Background(), now)
	require.NoError(t, err)

	data, err := fs.Read(context.Background(), "wallet.json")
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, now, got.AsOf)

	// Only the quotable position is valued; DARK.NS is skipped.
	require.Len(t, got.Valuations, 1)
	assert.Equal(t, "INFY.NS", got.Valuations[0].Symbol)
	assert.Equal(t, 1050.0, got.Valuations[0].LastPrice)
	assert.Equal(t, 200.0, got.Valuations[0].UnrealizedPnl)
}
