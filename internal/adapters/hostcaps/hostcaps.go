// Package hostcaps inspects the host CPU so the probe command can report
// which compiled variants the dispatch object would actually select.
package hostcaps

import (
	"runtime"

	"github.com/lanebuild/lane/internal/core/domain"
	"golang.org/x/sys/cpu"
)

// Supported reports whether the host CPU can execute code compiled for the
// given variant. Variants for a foreign architecture are never supported.
func Supported(variant domain.ISAVariant) bool {
	switch variant.Family() {
	case "sse2":
		return isAMD64() && cpu.X86.HasSSE2
	case "sse4":
		return isAMD64() && cpu.X86.HasSSE41
	case "avx1", "avx1.1":
		return isAMD64() && cpu.X86.HasAVX
	case "avx2":
		return isAMD64() && cpu.X86.HasAVX2
	case "avx512skx", "avx512spr", "avx512icl":
		return isAMD64() && cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW
	case "neon":
		return runtime.GOARCH == "arm64" && cpu.ARM64.HasASIMD
	default:
		return false
	}
}

// Report returns, for each candidate variant, whether this host supports it.
// The slice preserves the input order.
func Report(variants []domain.ISAVariant) []VariantSupport {
	out := make([]VariantSupport, len(variants))
	for i, v := range variants {
		out[i] = VariantSupport{Variant: v, Supported: Supported(v)}
	}
	return out
}

// VariantSupport pairs a variant with the host's verdict on it.
type VariantSupport struct {
	Variant   domain.ISAVariant
	Supported bool
}

func isAMD64() bool {
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "386"
}
