package ports

import "github.com/lanebuild/lane/internal/core/domain"

// HeaderParser extracts exported function declarations from one compiler
// emitted header file. Constructs the binding type mapping cannot represent
// fail with domain.ErrUnsupportedSignature naming the declaration.
type HeaderParser interface {
	ParseFile(path string, kernel string) ([]domain.FunctionDecl, error)
}

// HeaderMerger combines the per-kernel declaration sets of one build pass
// into the archive's canonical declaration list and renders the merged
// header. Merge fails with domain.ErrDuplicateSymbol when two kernels
// export the same name.
type HeaderMerger interface {
	Merge(artifacts []domain.CompiledArtifact) ([]domain.FunctionDecl, error)
	Render(libName string, decls []domain.FunctionDecl) []byte
}
