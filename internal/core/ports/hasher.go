package ports

import "github.com/lanebuild/lane/internal/core/domain"

// Fingerprinter computes the cache key of one invocation. The fingerprint
// is a pure function of the kernel source content, the full argument list,
// and the compiler version.
type Fingerprinter interface {
	Fingerprint(inv *domain.Invocation, version domain.CompilerVersion) (string, error)
}
