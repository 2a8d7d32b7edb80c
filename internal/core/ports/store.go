package ports

import "github.com/lanebuild/lane/internal/core/domain"

// BuildRecordStore persists per-invocation fingerprints between builds.
// Get returns (nil, nil) when no record exists for the key.
type BuildRecordStore interface {
	Get(key string) (*domain.BuildRecord, error)
	Put(record domain.BuildRecord) error
}

// StoreOpener opens the record store rooted in a build's output directory.
// The cache is scoped per output directory, not global.
type StoreOpener interface {
	Open(dir string) (BuildRecordStore, error)
}
