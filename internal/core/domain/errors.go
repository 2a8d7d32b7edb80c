package domain

import "go.trai.ch/zerr"

var (
	// ErrCompilerNotFound is returned when the external compiler binary is
	// absent from every searched location and no override was given.
	ErrCompilerNotFound = zerr.New("compiler not found")

	// ErrCompilerVersionUnsupported is returned when a located binary fails
	// the version probe or reports a version below the supported minimum.
	ErrCompilerVersionUnsupported = zerr.New("compiler version unsupported")

	// ErrUnsupportedTargetConfiguration is returned when a requested
	// architecture/variant/addressing combination is outside the located
	// compiler's capability set. Detected before any invocation runs.
	ErrUnsupportedTargetConfiguration = zerr.New("unsupported target configuration")

	// ErrCompilationFailed is returned when the compiler exits non-zero for
	// one invocation. It carries the kernel, variant, and captured output.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrToolchainContractViolation is returned when the compiler exits zero
	// but an expected output file is missing. This class is never recoverable
	// since the external tool diverged from its documented contract.
	ErrToolchainContractViolation = zerr.New("toolchain contract violation")

	// ErrDuplicateSymbol is returned when two distinct kernel sources export
	// an identically-named function.
	ErrDuplicateSymbol = zerr.New("duplicate exported symbol")

	// ErrUnsupportedSignature is returned when a header declaration cannot be
	// represented by the binding surface's type mapping.
	ErrUnsupportedSignature = zerr.New("unsupported signature")

	// ErrArchiveWriteFailed is returned when the output archive or merged
	// header cannot be written. Prior outputs are left untouched.
	ErrArchiveWriteFailed = zerr.New("archive write failed")

	// ErrNoKernels is returned when the manifest names no kernel sources.
	ErrNoKernels = zerr.New("no kernel sources configured")

	// ErrBuildFailed wraps the joined per-kernel failures of one build pass.
	ErrBuildFailed = zerr.New("build failed")
)
