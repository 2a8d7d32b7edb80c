// Package tasksys bundles the C task system that kernels using launch
// statements need linked in, and compiles it into the output archive.
package tasksys

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// The asset lives in a subdirectory so the toolchain does not treat it as a
// cgo source of this package.
//
//go:embed runtime/tasksys.c
var source []byte

var _ ports.TaskSystemBuilder = (*Builder)(nil)

// Builder compiles the bundled task system with the host C compiler.
type Builder struct {
	runner ports.ProcessRunner
}

// NewBuilder creates a new Builder.
func NewBuilder(runner ports.ProcessRunner) *Builder {
	return &Builder{runner: runner}
}

// Compile writes the bundled source under dir and compiles it to an object
// file that resolves the ISPCLaunch/ISPCSync/ISPCAlloc symbols. The C
// compiler is taken from CC, defaulting to "cc".
func (b *Builder) Compile(ctx context.Context, dir string, debug bool) (string, error) {
	src := filepath.Join(dir, "lane_tasksys.c")
	if err := os.WriteFile(src, source, 0o600); err != nil {
		return "", zerr.Wrap(err, "failed to write task system source")
	}

	obj := filepath.Join(dir, "lane_tasksys.o")
	args := []string{"-c", "-O2", "-pthread", "-o", obj, src}
	if debug {
		args = append([]string{"-g"}, args...)
	}

	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}

	res, err := b.runner.Run(ctx, cc, args, "")
	if err != nil {
		return "", zerr.Wrap(err, "failed to run C compiler for task system")
	}
	if res.ExitCode != 0 {
		failed := zerr.With(zerr.Wrap(domain.ErrCompilationFailed, "C compiler exited non-zero"), "kernel", "tasksys")
		return "", zerr.With(failed, "output", string(res.Output))
	}
	if _, err := os.Stat(obj); err != nil {
		violation := zerr.With(zerr.Wrap(domain.ErrToolchainContractViolation, "C compiler exited zero without producing the object"), "kernel", "tasksys")
		return "", zerr.With(violation, "missing", obj)
	}
	return obj, nil
}
