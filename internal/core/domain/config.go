package domain

// BuildConfig is the full build-time configuration surface: the manifest
// contents merged with CLI overrides. The app validates it once, then the
// pipeline treats it as immutable.
type BuildConfig struct {
	CompilerOverride string
	OutputDir        string
	ArchiveName      string // library name without "lib" prefix or extension
	BindingPackage   string
	Target           BuildTarget
	Kernels          []KernelSource
	Parallelism      int // 0 means the host's logical core count
	TaskSystem       bool
}

// ArchiveFile returns the platform-conventional archive file name,
// e.g. "libkernels.a".
func (c BuildConfig) ArchiveFile() string {
	return "lib" + c.ArchiveName + ".a"
}
