// Package archive merges object files into one linkable static archive.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Archiver implements ports.Archiver with the host platform's native
// archiving tool invoked through the process runner.
type Archiver struct {
	runner ports.ProcessRunner
	goos   string
}

var _ ports.Archiver = (*Archiver)(nil)

// New creates an Archiver for the current platform.
func New(runner ports.ProcessRunner) *Archiver {
	return &Archiver{runner: runner, goos: runtime.GOOS}
}

// NewForOS creates an Archiver for an explicit platform. Used by tests.
func NewForOS(runner ports.ProcessRunner, goos string) *Archiver {
	return &Archiver{runner: runner, goos: goos}
}

// Archive merges the objects into dest. The member order is sorted and the
// archiver runs in deterministic mode, so identical inputs produce
// byte-identical archives. The archive is assembled under a temporary name
// and renamed into place; on any failure a pre-existing dest is untouched.
func (a *Archiver) Archive(ctx context.Context, dest string, objects []string) error {
	if len(objects) == 0 {
		return zerr.Wrap(domain.ErrArchiveWriteFailed, "no objects to archive")
	}

	sorted := make([]string, len(objects))
	copy(sorted, objects)
	sort.Strings(sorted)

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create output directory")
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp", filepath.Base(dest)))
	defer os.Remove(tmp) //nolint:errcheck // best effort cleanup, rename may have consumed it

	tool, args := a.command(tmp, sorted)
	res, err := a.runner.Run(ctx, tool, args, "")
	if err != nil {
		return zerr.Wrap(err, "failed to run archiver")
	}
	if res.ExitCode != 0 {
		archErr := zerr.With(zerr.Wrap(domain.ErrArchiveWriteFailed, "archiver exited non-zero"), "tool", tool)
		archErr = zerr.With(archErr, "exit_code", res.ExitCode)
		return zerr.With(archErr, "output", string(res.Output))
	}

	if _, err := os.Stat(tmp); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveWriteFailed, "archiver exited zero without producing output"), "tool", tool)
	}

	if err := os.Rename(tmp, dest); err != nil {
		return zerr.Wrap(err, "failed to move archive into place")
	}
	return nil
}

// command picks the platform archiving convention. The "D" modifier puts GNU
// ar in deterministic mode (zeroed timestamps and ownership).
func (a *Archiver) command(dest string, objects []string) (string, []string) {
	switch a.goos {
	case "darwin":
		return "libtool", append([]string{"-static", "-o", dest}, objects...)
	case "windows":
		return "llvm-ar", append([]string{"crsD", dest}, objects...)
	default:
		return "ar", append([]string{"crsD", dest}, objects...)
	}
}
