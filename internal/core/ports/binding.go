package ports

import "github.com/lanebuild/lane/internal/core/domain"

// BindingGenerator renders the host-callable declarations for an archive:
// one Go source file whose wrappers expose every exported kernel function
// with host-native types.
type BindingGenerator interface {
	Generate(archive domain.OutputArchive, pkg string) ([]byte, error)
}
