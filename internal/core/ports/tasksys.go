package ports

import "context"

// TaskSystemBuilder compiles the bundled task runtime into an object file
// under the given directory, returning the object's path. Kernels using
// launch statements need this object linked into the archive.
type TaskSystemBuilder interface {
	Compile(ctx context.Context, dir string, debug bool) (string, error)
}
