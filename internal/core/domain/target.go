package domain

import "strings"

// Arch is the host architecture the compiler emits objects for.
type Arch string

// Architectures understood by the target resolver.
const (
	ArchX86     Arch = "x86"
	ArchX86_64  Arch = "x86-64"
	ArchAarch64 Arch = "aarch64"
)

// Addressing is the pointer width compiled code uses to index arrays.
// 32-bit addressing is the compiler default and is faster; arrays beyond
// 2^31 elements need 64-bit addressing.
type Addressing int

// Supported addressing widths.
const (
	Addr32 Addressing = 32
	Addr64 Addressing = 64
)

// ISAVariant names one vector instruction-set target, optionally refined
// with a lane configuration, e.g. "sse2", "avx2-i32x8", "neon-i32x4".
type ISAVariant string

// ISA variant families without a lane-width refinement.
const (
	VariantSSE2   ISAVariant = "sse2"
	VariantSSE4   ISAVariant = "sse4"
	VariantAVX1   ISAVariant = "avx1"
	VariantAVX1_1 ISAVariant = "avx1.1"
	VariantAVX2   ISAVariant = "avx2"
	VariantAVX512 ISAVariant = "avx512skx-x16"
	VariantNeon   ISAVariant = "neon-i32x4"
)

// Family strips the lane-width refinement, so "avx2-i32x8" becomes "avx2".
func (v ISAVariant) Family() string {
	s := string(v)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[:i]
	}
	return s
}

// MathLib selects which math library compiled code calls out to.
type MathLib string

// Math library choices, mirroring the compiler's --math-lib values.
const (
	MathDefault MathLib = "default"
	MathFast    MathLib = "fast"
	MathSVML    MathLib = "svml"
	MathSystem  MathLib = "system"
)

// Define is a -D preprocessor definition passed through to the compiler.
type Define struct {
	Key   string
	Value string // empty means a bare -DKEY
}

// BuildTarget is the resolved build configuration tuple. It is derived once
// from the manifest plus CLI overrides and immutable for the build's
// duration.
type BuildTarget struct {
	Arch       Arch
	Addressing Addressing
	Variants   []ISAVariant
	OptLevel   int
	Debug      bool
	PIC        bool
	Math       MathLib
	Defines    []Define
	CPUs       []string
	Includes   []string

	ForceAlignment int

	DisableAsserts    bool
	DisableFMA        bool
	DisableLoopUnroll bool
	FastMaskedVLoad   bool
	FastMath          bool

	Werror          bool
	WarningsOff     bool
	PerfWarningsOff bool
}

// MultiVariant reports whether runtime dispatch is needed, i.e. more than
// one ISA variant was requested.
func (t BuildTarget) MultiVariant() bool {
	return len(t.Variants) > 1
}

// FlagSet is one ordered compiler flag list produced by the target resolver.
// A build with N variants yields N variant flag sets plus one dispatch flag
// set whose object selects among the variants at runtime.
type FlagSet struct {
	Variant  ISAVariant // empty for the dispatch set
	Dispatch bool
	Args     []string
}
