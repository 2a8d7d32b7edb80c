package domain

// KernelSource is a single SPMD source file supplied by the host build.
// Name derives the output artifact names; it must be unique per build.
type KernelSource struct {
	Name     string
	Path     string
	Includes []string
}

// Invocation is one concrete compiler command for a (KernelSource, flag set)
// pair. It is created by the invocation engine, executed once, and not
// retained afterwards.
type Invocation struct {
	Kernel   KernelSource
	Variant  ISAVariant // empty for the dispatch invocation
	Dispatch bool

	CompilerPath string
	Args         []string // full argument list, input and outputs included
	WorkDir      string

	// Expected outputs the compiler must produce on a zero exit. A missing
	// file despite success is a toolchain contract violation.
	ObjectPath string
	HeaderPath string
}

// Key identifies the invocation for caching and diagnostics,
// e.g. "mandelbrot@avx2-i32x8" or "mandelbrot@dispatch".
func (inv Invocation) Key() string {
	if inv.Dispatch {
		return inv.Kernel.Name + "@dispatch"
	}
	return inv.Kernel.Name + "@" + string(inv.Variant)
}

// CompiledArtifact is the output of all invocations for one KernelSource:
// every object that becomes part of the archive plus the emitted header
// declaring the kernel's exported functions.
type CompiledArtifact struct {
	Kernel     KernelSource
	Objects    []string
	HeaderPath string
	Decls      []FunctionDecl
}

// OutputArchive is the sole durable output of the pipeline: one linkable
// archive plus the merged header the binding surface is generated from.
type OutputArchive struct {
	Path       string
	HeaderPath string
	LibName    string
	Decls      []FunctionDecl
}

// BuildRecord is the cached fingerprint of one completed invocation.
// An invocation is a pure function of (source content, flags, compiler
// version); matching fingerprints with intact outputs allow a skip.
type BuildRecord struct {
	Key         string `json:"key"`
	InputHash   string `json:"input_hash"`
	ObjectPath  string `json:"object_path"`
	HeaderPath  string `json:"header_path"`
	CompilerVer string `json:"compiler_version"`
}
