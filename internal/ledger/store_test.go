package ledger_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load_FirstRun(t *testing.T) {
	store := ledger.NewStore(filepath.Join(t.TempDir(), "wallet.json"))

	w, err := store.Load(100000)
	require.NoError(t, err)

	assert.Equal(t, float64(100000), w.Capital)
	assert.Equal(t, float64(100000), w.Balance)
	assert.Empty(t, w.Positions)
	assert.Empty(t, w.Trades)
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	store := ledger.NewStore(path)

	w, err := store.Load(100000)
	require.NoError(t, err)

	opened, err := w.Open("HDFCBANK", 1543.75, 6, now)
	require.NoError(t, err)
	closedPos, err := w.Open("WIPRO", 412.1, 20, now)
	require.NoError(t, err)
	_, closed := w.Evaluate(closedPos.ID, 500, now)
	require.True(t, closed)

	require.NoError(t, store.Save(w))

	got, err := store.Load(100000)
	require.NoError(t, err)

	// Balances and prices must round-trip exactly.
	assert.Equal(t, w.Balance, got.Balance)
	assert.Equal(t, w.Capital, got.Capital)
	require.Len(t, got.Positions, 1)
	assert.Equal(t, opened.ID, got.Positions[0].ID)
	assert.Equal(t, 1543.75, got.Positions[0].EntryPrice)
	assert.Equal(t, opened.StopLoss, got.Positions[0].StopLoss)
	require.Len(t, got.Trades, 1)
	assert.Equal(t, w.Trades[0].RealizedPnl, got.Trades[0].RealizedPnl)
	assert.True(t, got.ConservesCapital())
}

func TestStore_Load_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := ledger.NewStore(path)
	_, err := store.Load(100000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLedgerCorrupt))
}

func TestStore_Save_NoPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	store := ledger.NewStore(path)

	w, err := store.Load(50000)
	require.NoError(t, err)
	require.NoError(t, store.Save(w))

	// A second save replaces the document; no temp file is left behind.
	_, err = w.Open("SBIN", 100, 10, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(w))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := store.Load(50000)
	require.NoError(t, err)
	assert.Len(t, got.Positions, 1)
}

func TestStore_Save_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "wallet.json")
	store := ledger.NewStore(path)

	w, err := store.Load(1000)
	require.NoError(t, err)
	require.NoError(t, store.Save(w))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
