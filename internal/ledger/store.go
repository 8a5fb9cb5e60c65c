package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaiquant/kai/internal/core"
)

// Store persists the wallet as a single JSON document. Load and Save
// are whole-document operations; there are no partial field writes.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the wallet document. A missing file is the first run and
// yields a fresh wallet with the given capital; an unreadable or
// corrupt file is fatal for the run, never silently reinitialized.
func (s *Store) Load(capital float64) (*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(capital), nil
		}
		return nil, core.WrapError(core.ErrLedgerCorrupt, err)
	}

	var w Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, core.WrapError(core.ErrLedgerCorrupt, err)
	}
	if w.Positions == nil {
		w.Positions = []Position{}
	}
	if w.Trades == nil {
		w.Trades = []Position{}
	}
	return &w, nil
}

// Save writes the whole wallet document. The write goes to a temp file
// first and is renamed into place, so a failed run leaves the prior
// persisted state untouched and readers never see a partial document.
func (s *Store) Save(w *Wallet) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
