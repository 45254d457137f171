// Package snapshot persists the full account collection as a single JSON
// file. Writes go through a temp file and rename so a crash mid-write leaves
// the previous snapshot intact, and a missing or corrupt file loads as an
// empty account set rather than an error.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taka-pay/taka_pay/internal/account"
)

// ErrPersistence wraps any failure to write the snapshot file. The in-memory
// mutation has already committed by the time a save runs, so callers surface
// this as a durability warning, not a logical failure.
var ErrPersistence = errors.New("snapshot write failed")

const formatVersion = 1

type meta struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	WrittenAt time.Time `json:"written_at"`
}

type snapshot struct {
	Meta     meta               `json:"_meta"`
	Accounts []*account.Account `json:"accounts"`
}

// Store reads and writes the snapshot file at a fixed path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore builds a store for the given snapshot path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot and returns the account set it contains. A file
// that is absent, unreadable or undecodable yields an empty set: corruption
// is treated as "no data yet" so startup never fails on bad state.
func (s *Store) Load() []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil
	}
	return snap.Accounts
}

// Save serializes the entire account collection and atomically replaces the
// snapshot file.
func (s *Store) Save(accounts []*account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		Meta:     meta{Format: "json_snapshot", Version: formatVersion, WrittenAt: time.Now().UTC()},
		Accounts: accounts,
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
