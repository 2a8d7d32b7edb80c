// Package config provides the build manifest loader.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultManifest is the manifest filename looked up when none is given.
const DefaultManifest = "lane.yaml"

// Loader implements ports.ConfigLoader for YAML manifests.
type Loader struct{}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a manifest and maps it onto the domain configuration,
// validating everything that can be checked without the compiler handle.
func (l *Loader) Load(path string) (*domain.BuildConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read manifest")
	}

	var file Lanefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse manifest")
	}

	cfg := &domain.BuildConfig{
		CompilerOverride: file.Compiler,
		OutputDir:        defaultString(file.Output, "build"),
		ArchiveName:      defaultString(file.Archive, "kernels"),
		BindingPackage:   defaultString(file.Package, "kernels"),
		Parallelism:      file.Parallelism,
		TaskSystem:       file.TaskSystem,
		Target:           mapTarget(file.Target),
	}

	if cfg.Parallelism < 0 {
		return nil, zerr.With(zerr.New("parallelism must not be negative"), "parallelism", cfg.Parallelism)
	}

	seen := make(map[string]bool, len(file.Kernels))
	base := filepath.Dir(path)
	for _, k := range file.Kernels {
		name := k.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(k.Path), filepath.Ext(k.Path))
		}
		if k.Path == "" {
			return nil, zerr.With(zerr.New("kernel entry missing path"), "kernel", name)
		}
		if seen[name] {
			return nil, zerr.With(zerr.New("kernel name used twice"), "kernel", name)
		}
		seen[name] = true
		cfg.Kernels = append(cfg.Kernels, domain.KernelSource{
			Name:     name,
			Path:     joinIfRelative(base, k.Path),
			Includes: joinAllIfRelative(base, k.Includes),
		})
	}
	if len(cfg.Kernels) == 0 {
		return nil, domain.ErrNoKernels
	}

	return cfg, nil
}

func mapTarget(t TargetDTO) domain.BuildTarget {
	bt := domain.BuildTarget{
		Arch:            domain.Arch(defaultString(t.Arch, hostArch())),
		Addressing:      domain.Addressing(t.Addressing),
		Debug:           t.Debug,
		Math:            domain.MathLib(t.Math),
		CPUs:            t.CPUs,
		Includes:        t.Includes,
		ForceAlignment:  t.ForceAlignment,
		Werror:          t.Werror,
		WarningsOff:     t.Woff,
		PerfWarningsOff: t.WnoPerf,
	}

	if bt.Addressing == 0 {
		bt.Addressing = domain.Addr32
	}

	for _, v := range t.Variants {
		bt.Variants = append(bt.Variants, domain.ISAVariant(v))
	}
	if len(bt.Variants) == 0 {
		bt.Variants = defaultVariants(bt.Arch)
	}

	if t.Opt != nil {
		bt.OptLevel = *t.Opt
	} else if t.Debug {
		bt.OptLevel = 0
	} else {
		bt.OptLevel = 2
	}

	// PIC defaults on for 64-bit hosts, matching common linker expectations.
	if t.PIC != nil {
		bt.PIC = *t.PIC
	} else {
		bt.PIC = bt.Arch != domain.ArchX86
	}

	// Definition order must be stable so invocation fingerprints are too.
	keys := make([]string, 0, len(t.Defines))
	for k := range t.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		bt.Defines = append(bt.Defines, domain.Define{Key: k, Value: t.Defines[k]})
	}

	return bt
}

// defaultVariants is the fan-out used when the manifest names none,
// covering the common deployment range with runtime dispatch.
func defaultVariants(arch domain.Arch) []domain.ISAVariant {
	if arch == domain.ArchAarch64 {
		return []domain.ISAVariant{domain.VariantNeon}
	}
	return []domain.ISAVariant{
		domain.VariantSSE2,
		domain.VariantSSE4,
		domain.VariantAVX1,
		domain.VariantAVX2,
	}
}

func hostArch() string {
	switch runtime.GOARCH {
	case "386":
		return string(domain.ArchX86)
	case "arm64":
		return string(domain.ArchAarch64)
	default:
		return string(domain.ArchX86_64)
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinIfRelative(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func joinAllIfRelative(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = joinIfRelative(base, p)
	}
	return out
}
