// Package ports defines the core interfaces for the application.
package ports

import "context"

// RunResult is the observable outcome of one external process execution.
// Output holds stdout and stderr interleaved, verbatim.
type RunResult struct {
	ExitCode int
	Output   []byte
}

// ProcessRunner executes external processes. A non-zero exit status is
// reported through RunResult, not as an error; the error return is reserved
// for failures to start or wait on the process at all.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	Run(ctx context.Context, path string, args []string, dir string) (RunResult, error)
}
