package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// FileStore persists enrolled identities as a single JSON object mapping
// code to embedding vector. The whole file is loaded once at startup and
// rewritten on every mutation; a mutation that fails to flush is rolled
// back and reported as an error.
type FileStore struct {
	mu   sync.RWMutex
	path string
	db   map[string][]float32
}

// NewFileStore loads the identity database from path. A missing file is an
// empty store, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		db:   make(map[string][]float32),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading identity database: %w", err)
	}
	if err := json.Unmarshal(data, &s.db); err != nil {
		return nil, fmt.Errorf("parsing identity database %s: %w", path, err)
	}
	return s, nil
}

// Enroll inserts or replaces the embedding for code and flushes the store.
func (s *FileStore) Enroll(ctx context.Context, code string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.db[code]
	s.db[code] = append([]float32(nil), embedding...)
	if err := s.save(); err != nil {
		if existed {
			s.db[code] = previous
		} else {
			delete(s.db, code)
		}
		return err
	}
	return nil
}

// All returns every enrolled identity, ordered by code.
func (s *FileStore) All(ctx context.Context) ([]Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities := make([]Identity, 0, len(s.db))
	for code, emb := range s.db {
		identities = append(identities, Identity{
			Code:      code,
			Embedding: append([]float32(nil), emb...),
		})
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].Code < identities[j].Code })
	return identities, nil
}

// List returns all enrolled codes in sorted order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.db))
	for code := range s.db {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// Count returns the number of enrolled identities.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.db), nil
}

// Reset removes all enrolled identities and flushes the empty store.
func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.db
	s.db = make(map[string][]float32)
	if err := s.save(); err != nil {
		s.db = previous
		return err
	}
	return nil
}

// save writes the whole database to disk. Caller must hold the write lock.
func (s *FileStore) save() error {
	data, err := json.Marshal(s.db)
	if err != nil {
		return fmt.Errorf("encoding identity database: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing identity database: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*FileStore)(nil)
