// Package fs provides filesystem-backed build support, currently the
// invocation fingerprinter.
package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes invocation fingerprints with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the kernel source content, the full argument list, and
// the compiler version into one cache key. Any change to either input
// produces a different key, so a stale object is never reused.
func (h *Hasher) Fingerprint(inv *domain.Invocation, version domain.CompilerVersion) (string, error) {
	hasher := xxhash.New()

	if err := hashFile(hasher, inv.Kernel.Path); err != nil {
		return "", err
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	for _, arg := range inv.Args {
		_, _ = hasher.WriteString(arg)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(version.String())

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func hashFile(hasher *xxhash.Digest, path string) error {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open kernel source"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(hasher, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to hash kernel source"), "path", path)
	}
	return nil
}
