// Package cache persists build records between runs so unchanged
// invocations can be skipped.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// StateFile is the record store's filename inside the output directory.
const StateFile = ".lane-state.json"

// Store implements ports.BuildRecordStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.BuildRecord
}

var _ ports.BuildRecordStore = (*Store)(nil)

// NewStore creates a record store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.BuildRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read build record store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		// A corrupt state file only costs a rebuild, not the build.
		s.cache = make(map[string]domain.BuildRecord)
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal build record store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for build record store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write build record store")
	}

	return nil
}

// Get retrieves the record for an invocation key, or (nil, nil) when none
// exists.
func (s *Store) Get(key string) (*domain.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record and flushes the store to disk.
func (s *Store) Put(record domain.BuildRecord) error {
	s.mu.Lock()
	s.cache[record.Key] = record
	s.mu.Unlock()

	return s.save()
}

// Opener implements ports.StoreOpener for directory-scoped stores.
type Opener struct{}

var _ ports.StoreOpener = (*Opener)(nil)

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the record store scoped to the given output directory.
func (o *Opener) Open(dir string) (ports.BuildRecordStore, error) {
	return NewStore(filepath.Join(dir, StateFile))
}
