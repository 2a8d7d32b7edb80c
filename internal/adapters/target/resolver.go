// Package target maps the build configuration onto compiler flag lists.
package target

import (
	"fmt"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolver implements ports.TargetResolver.
type Resolver struct{}

var _ ports.TargetResolver = (*Resolver)(nil)

// New creates a new Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve produces one flag set per requested variant and, for multi-variant
// builds, one trailing dispatch flag set whose object selects the variant at
// runtime. Every requested combination is validated against the compiler's
// capability set before any invocation is issued.
func (r *Resolver) Resolve(handle *domain.CompilerHandle, t domain.BuildTarget) ([]domain.FlagSet, error) {
	if err := validate(handle, t); err != nil {
		return nil, err
	}

	base := baseFlags(t)

	sets := make([]domain.FlagSet, 0, len(t.Variants)+1)
	for _, v := range t.Variants {
		args := append(append([]string{}, base...), "--target="+string(v))
		sets = append(sets, domain.FlagSet{Variant: v, Args: args})
	}

	if t.MultiVariant() {
		all := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			all[i] = string(v)
		}
		args := append(append([]string{}, base...), "--target="+strings.Join(all, ","))
		sets = append(sets, domain.FlagSet{Dispatch: true, Args: args})
	}

	return sets, nil
}

func validate(handle *domain.CompilerHandle, t domain.BuildTarget) error {
	if len(t.Variants) == 0 {
		return zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "no ISA variants requested")
	}
	if !handle.Capabilities.SupportsAddressing(t.Addressing) {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "addressing width not supported"), "addressing", int(t.Addressing))
	}
	if t.OptLevel < 0 || t.OptLevel > 3 {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "optimization level out of range"), "opt_level", t.OptLevel)
	}
	seen := make(map[domain.ISAVariant]bool, len(t.Variants))
	families := make(map[string]domain.ISAVariant, len(t.Variants))
	for _, v := range t.Variants {
		if !handle.Capabilities.SupportsVariant(t.Arch, v) {
			err := zerr.With(zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "variant outside compiler capability set"), "arch", string(t.Arch))
			err = zerr.With(err, "variant", string(v))
			return zerr.With(err, "compiler_version", handle.Version.String())
		}
		if seen[v] {
			return zerr.With(zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "variant requested twice"), "variant", string(v))
		}
		// The dispatch stub distinguishes implementations by family; two lane
		// widths of the same family cannot coexist in one archive.
		if prev, ok := families[v.Family()]; ok {
			err := zerr.With(zerr.Wrap(domain.ErrUnsupportedTargetConfiguration, "one lane width per ISA family"), "variant", string(v))
			return zerr.With(err, "conflicts_with", string(prev))
		}
		seen[v] = true
		families[v.Family()] = v
	}
	return nil
}

// baseFlags builds the variant-independent portion of the argument list, in
// a fixed order so fingerprints stay stable across runs.
func baseFlags(t domain.BuildTarget) []string {
	var args []string

	args = append(args, fmt.Sprintf("--addressing=%d", t.Addressing))
	args = append(args, "--arch="+archFlag(t.Arch))

	if len(t.CPUs) > 0 {
		args = append(args, "--cpu="+strings.Join(t.CPUs, ","))
	}

	for _, d := range t.Defines {
		if d.Value == "" {
			args = append(args, "-D"+d.Key)
		} else {
			args = append(args, "-D"+d.Key+"="+d.Value)
		}
	}

	args = append(args, "--emit-obj")

	if t.ForceAlignment > 0 {
		args = append(args, fmt.Sprintf("--force-alignment=%d", t.ForceAlignment))
	}

	if t.Debug {
		args = append(args, "-g")
	}

	args = append(args, "--math-lib="+string(mathOrDefault(t.Math)))
	args = append(args, fmt.Sprintf("-O%d", t.OptLevel))

	if t.DisableAsserts {
		args = append(args, "--opt=disable-assertions")
	}
	if t.DisableFMA {
		args = append(args, "--opt=disable-fma")
	}
	if t.DisableLoopUnroll {
		args = append(args, "--opt=disable-loop-unroll")
	}
	if t.FastMaskedVLoad {
		args = append(args, "--opt=fast-masked-vload")
	}
	if t.FastMath {
		args = append(args, "--opt=fast-math")
	}

	if t.PIC {
		args = append(args, "--pic")
	}

	for _, inc := range t.Includes {
		args = append(args, "-I", inc)
	}

	if t.Werror {
		args = append(args, "--werror")
	}
	if t.WarningsOff {
		args = append(args, "--woff")
	}
	if t.PerfWarningsOff {
		args = append(args, "--wno-perf")
	}

	return args
}

func archFlag(a domain.Arch) string {
	switch a {
	case domain.ArchX86:
		return "x86"
	case domain.ArchAarch64:
		return "aarch64"
	default:
		return "x86-64"
	}
}

func mathOrDefault(m domain.MathLib) domain.MathLib {
	if m == "" {
		return domain.MathDefault
	}
	return m
}
