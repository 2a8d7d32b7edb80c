// Package locator resolves and validates the external SPMD compiler binary.
package locator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvVar is the environment variable naming the compiler binary, matching
// the convention the compiler's own build integrations use.
const EnvVar = "ISPC"

// binaryName is the compiler binary searched for on PATH.
const binaryName = "ispc"

// Locator implements ports.CompilerLocator.
type Locator struct {
	runner ports.ProcessRunner
	logger ports.Logger
}

var _ ports.CompilerLocator = (*Locator)(nil)

// New creates a new Locator probing candidates through the given runner.
func New(runner ports.ProcessRunner, logger ports.Logger) *Locator {
	return &Locator{runner: runner, logger: logger}
}

// Locate resolves the compiler. Search order: explicit override, the ISPC
// environment variable, then every PATH entry. The first existing executable
// is probed with --version; a probe failure is a hard error, not a reason to
// keep searching, so a broken override never silently falls back to PATH.
func (l *Locator) Locate(ctx context.Context, override string) (*domain.CompilerHandle, error) {
	var searched []string

	for _, candidate := range l.candidates(override) {
		searched = append(searched, candidate)
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if !isExecutable(abs) {
			continue
		}
		return l.probe(ctx, abs)
	}

	return nil, zerr.With(zerr.Wrap(domain.ErrCompilerNotFound, "no usable binary in any searched location"), "searched", strings.Join(searched, string(os.PathListSeparator)))
}

func (l *Locator) candidates(override string) []string {
	if override != "" {
		return []string{override}
	}

	var out []string
	if env := os.Getenv(EnvVar); env != "" {
		out = append(out, env)
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		out = append(out, filepath.Join(dir, binaryName))
	}
	return out
}

// probe runs --version, parses the banner, and rejects versions below the
// supported minimum.
func (l *Locator) probe(ctx context.Context, path string) (*domain.CompilerHandle, error) {
	res, err := l.runner.Run(ctx, path, []string{"--version"}, "")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "version probe failed"), "path", path)
	}
	if res.ExitCode != 0 {
		probeErr := zerr.With(zerr.Wrap(domain.ErrCompilerVersionUnsupported, "version probe exited non-zero"), "path", path)
		return nil, zerr.With(probeErr, "probe_output", string(res.Output))
	}

	version, err := domain.ParseCompilerVersion(string(res.Output))
	if err != nil {
		parseErr := zerr.With(zerr.Wrap(domain.ErrCompilerVersionUnsupported, "unparseable version banner"), "path", path)
		return nil, zerr.With(parseErr, "probe_output", string(res.Output))
	}

	if !version.AtLeast(domain.MinCompilerVersion) {
		oldErr := zerr.With(zerr.Wrap(domain.ErrCompilerVersionUnsupported, "version below supported minimum"), "path", path)
		oldErr = zerr.With(oldErr, "detected", version.String())
		return nil, zerr.With(oldErr, "minimum", domain.MinCompilerVersion.String())
	}

	l.logger.Info("located compiler " + path + " (version " + version.String() + ")")

	return &domain.CompilerHandle{
		Path:         path,
		Version:      version,
		Capabilities: capabilitiesFor(version),
	}, nil
}

// variantIntro records the compiler release that introduced each variant
// family. Families absent from the map shipped before the supported minimum.
var variantIntro = map[string]domain.CompilerVersion{
	"avx512skx": {Major: 1, Minor: 13},
	"neon":      {Major: 1, Minor: 16},
}

func capabilitiesFor(v domain.CompilerVersion) domain.CapabilitySet {
	x86 := []domain.ISAVariant{
		domain.VariantSSE2, "sse2-i32x4", "sse2-i32x8",
		domain.VariantSSE4, "sse4-i32x4", "sse4-i32x8", "sse4-i16x8", "sse4-i8x16",
		domain.VariantAVX1, "avx1-i32x4", "avx1-i32x8", "avx1-i32x16", "avx1-i64x4",
		domain.VariantAVX1_1, "avx1.1-i32x8", "avx1.1-i32x16", "avx1.1-i64x4",
		domain.VariantAVX2, "avx2-i32x8", "avx2-i32x16", "avx2-i64x4",
		domain.VariantAVX512,
	}
	arm := []domain.ISAVariant{domain.VariantNeon}

	caps := domain.CapabilitySet{
		Variants:   make(map[domain.Arch][]domain.ISAVariant),
		Addressing: []domain.Addressing{domain.Addr32, domain.Addr64},
	}
	caps.Variants[domain.ArchX86] = filterByVersion(x86, v)
	caps.Variants[domain.ArchX86_64] = filterByVersion(x86, v)
	caps.Variants[domain.ArchAarch64] = filterByVersion(arm, v)
	return caps
}

func filterByVersion(variants []domain.ISAVariant, v domain.CompilerVersion) []domain.ISAVariant {
	out := make([]domain.ISAVariant, 0, len(variants))
	for _, variant := range variants {
		if intro, ok := variantIntro[variant.Family()]; ok && !v.AtLeast(intro) {
			continue
		}
		out = append(out, variant)
	}
	return out
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Mode()&0o111 != 0
}
