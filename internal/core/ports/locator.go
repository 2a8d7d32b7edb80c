package ports

import (
	"context"

	"github.com/lanebuild/lane/internal/core/domain"
)

// CompilerLocator resolves and validates the external SPMD compiler.
//
// Locate searches, in order: the explicit override (when non-empty), the
// ISPC environment variable, and every PATH entry. The returned handle
// carries the probed version and capability set. Failure modes are
// domain.ErrCompilerNotFound (listing every searched location) and
// domain.ErrCompilerVersionUnsupported.
type CompilerLocator interface {
	Locate(ctx context.Context, override string) (*domain.CompilerHandle, error)
}
