package ports

import "github.com/lanebuild/lane/internal/core/domain"

// ConfigLoader reads the build manifest from disk.
type ConfigLoader interface {
	Load(path string) (*domain.BuildConfig, error)
}
