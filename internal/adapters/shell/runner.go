// Package shell provides the external process runner adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.ProcessRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the program and captures stdout and stderr interleaved.
// A non-zero exit status is not an error here; callers own the exit-code
// contract of the tool they invoke.
func (r *Runner) Run(ctx context.Context, path string, args []string, dir string) (ports.RunResult, error) {
	r.logger.Info("exec: " + path + " " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // invoking the configured toolchain is the point
	if dir != "" {
		cmd.Dir = dir
	}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	res := ports.RunResult{Output: combined.Bytes()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, zerr.With(zerr.Wrap(err, "failed to execute command"), "path", path)
	}

	return res, nil
}
