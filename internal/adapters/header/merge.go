package header

import (
	"sort"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Merger implements ports.HeaderMerger over the package-level functions.
type Merger struct{}

var _ ports.HeaderMerger = (*Merger)(nil)

// NewMerger creates a new Merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge implements ports.HeaderMerger.
func (m *Merger) Merge(artifacts []domain.CompiledArtifact) ([]domain.FunctionDecl, error) {
	return Merge(artifacts)
}

// Render implements ports.HeaderMerger.
func (m *Merger) Render(libName string, decls []domain.FunctionDecl) []byte {
	return Render(libName, decls)
}

// Merge deduplicates declarations across the artifacts of one build pass.
// Identical signatures from the same kernel collapse to one (each ISA
// variant emits the same prototypes); the same symbol exported by two
// distinct kernels is a domain.ErrDuplicateSymbol naming both sources.
func Merge(artifacts []domain.CompiledArtifact) ([]domain.FunctionDecl, error) {
	byName := make(map[string]domain.FunctionDecl)
	var order []string

	for _, art := range artifacts {
		for _, decl := range art.Decls {
			prev, seen := byName[decl.Name]
			if !seen {
				byName[decl.Name] = decl
				order = append(order, decl.Name)
				continue
			}
			if prev.Kernel != decl.Kernel {
				err := zerr.With(zerr.Wrap(domain.ErrDuplicateSymbol, "exported by two kernels"), "symbol", decl.Name)
				err = zerr.With(err, "kernel_a", prev.Kernel)
				return nil, zerr.With(err, "kernel_b", decl.Kernel)
			}
			if !prev.Equal(decl) {
				// Same kernel emitting divergent prototypes for one symbol
				// means the variant headers disagree with each other.
				err := zerr.With(zerr.Wrap(domain.ErrToolchainContractViolation, "variant headers disagree on signature"), "symbol", decl.Name)
				return nil, zerr.With(err, "kernel", decl.Kernel)
			}
		}
	}

	sort.Strings(order)
	merged := make([]domain.FunctionDecl, len(order))
	for i, name := range order {
		merged[i] = byName[name]
	}
	return merged, nil
}

// Render emits the canonical merged header for an archive. Output is
// deterministic: declarations are sorted by symbol name.
func Render(libName string, decls []domain.FunctionDecl) []byte {
	var b strings.Builder

	guard := "LANE_" + strings.ToUpper(strings.ReplaceAll(libName, "-", "_")) + "_H"
	b.WriteString("/* Generated by lane. DO NOT EDIT. */\n")
	b.WriteString("#ifndef " + guard + "\n")
	b.WriteString("#define " + guard + "\n\n")
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("#include <stdbool.h>\n\n")
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	for _, d := range decls {
		b.WriteString(d.CSignature())
		b.WriteString(";\n")
	}

	b.WriteString("\n#ifdef __cplusplus\n}\n#endif\n\n")
	b.WriteString("#endif /* " + guard + " */\n")
	return []byte(b.String())
}
