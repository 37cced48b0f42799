// Package cas implements content-addressed storage of build receipts.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ReceiptStore = (*Store)(nil)

// Store implements ports.ReceiptStore with one JSON file per receipt, named
// by the sha256 of the receipt key.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a receipt store rooted at the given directory.
func NewStore(dir string) (*Store, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create receipt store directory")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathFor(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

// Get retrieves the receipt for a given key. Returns nil, nil if not found.
func (s *Store) Get(key string) (*domain.BuildReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	//nolint:gosec // Path is derived from the store dir and a hashed key
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read receipt")
	}

	var receipt domain.BuildReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal receipt")
	}
	return &receipt, nil
}

// Put stores the receipt. The write is atomic: a crash mid-write never leaves
// a truncated receipt claiming a stage completed.
func (s *Store) Put(receipt domain.BuildReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal receipt")
	}

	path := s.pathFor(receipt.Key)
	tmp := path + ".tmp"
	//nolint:gosec // Path is derived from the store dir and a hashed key
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write receipt")
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.Wrap(err, "failed to promote receipt")
	}
	return nil
}
